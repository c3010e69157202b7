package sync

import (
	"encoding/json"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/reminder"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// rawTodo is the wire shape a todowrite call's output parses into.
type rawTodo struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// syncTodos implements §4.D step 2: find the last completed todowrite call,
// reparse its output when it differs from the cursor, diff against the
// current todo list to preserve inProgressSince (invariant 8), and reset
// the todo-reminder turn cursor. The prune plan is not touched.
func syncTodos(state *session.State, currentTurn int, lastTodowriteCallID, lastTodowriteOutput string) {
	if lastTodowriteCallID == "" || lastTodowriteCallID == state.Cursors.TodoLastParsedCallID {
		return
	}
	var parsed []rawTodo
	if err := json.Unmarshal([]byte(lastTodowriteOutput), &parsed); err != nil {
		return
	}

	prior := make(map[string]session.Todo, len(state.Todos))
	for _, t := range state.Todos {
		prior[t.ID] = t
	}

	next := make([]session.Todo, 0, len(parsed))
	for _, rt := range parsed {
		status := session.TodoStatus(rt.Status)
		item := session.Todo{ID: rt.ID, Content: rt.Content, Status: status, Priority: rt.Priority}

		old, existed := prior[rt.ID]
		wasInProgress := existed && old.Status == session.TodoInProgress
		nowInProgress := status == session.TodoInProgress

		switch {
		case nowInProgress && wasInProgress:
			// Content-only edits never reset inProgressSince.
			item.InProgressSince = old.InProgressSince
		case nowInProgress && !wasInProgress:
			turn := currentTurn
			item.InProgressSince = &turn
		default:
			item.InProgressSince = nil
		}
		next = append(next, item)
	}

	state.Todos = next
	state.Cursors.TodoLastParsedCallID = lastTodowriteCallID
	state.Cursors.TodoLastReminderTurn = 0
}

// stuckTaskInputs projects state.Todos into the minimal view the reminder
// engine's stuck-task sync needs.
func stuckTaskInputs(state *session.State) []reminder.StuckTaskInput {
	out := make([]reminder.StuckTaskInput, 0, len(state.Todos))
	for _, t := range state.Todos {
		out = append(out, reminder.StuckTaskInput{
			ID:              t.ID,
			Content:         t.Content,
			InProgress:      t.Status == session.TodoInProgress,
			InProgressSince: t.InProgressSince,
		})
	}
	return out
}
