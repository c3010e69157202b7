package reminder

import (
	"fmt"
	"strings"
)

// StuckTaskReminderID returns the stable reminder ID for a todo item, used
// both to register and to remove its reminder.
func StuckTaskReminderID(todoID string) string {
	return "stuck_task." + todoID
}

// StuckTaskText renders the guidance text for a todo item that has been
// in_progress for turnsStuck turns (§8 scenario 7: the surfaced count is
// the number of turns actually elapsed since the item went in_progress,
// not the configured stuckTaskTurns threshold — a task that tripped the
// threshold several turns ago reports its full elapsed duration).
func StuckTaskText(todoID, content string, turnsStuck int) string {
	return fmt.Sprintf(
		"<system-reminder>Task %q (%s) has been in_progress for %d turns without completing. Consider whether it is stuck and needs a different approach.</system-reminder>",
		todoID, content, turnsStuck,
	)
}

// SyncStuckTaskReminders reconciles the engine's stuck-task reminders for
// sessionID against the current todo list: items newly past
// stuckTaskTurns get a reminder registered (or refreshed with updated
// text), items no longer in_progress (or no longer stuck) have their
// reminder removed.
//
// inProgressSince maps todo id -> the turn it last transitioned into
// in_progress (invariant 8); currentTurn is the session's current turn.
func (e *Engine) SyncStuckTaskReminders(sessionID string, todos []StuckTaskInput, currentTurn, stuckTaskTurns, minTurnsBetween int) {
	if stuckTaskTurns <= 0 {
		return
	}
	seen := make(map[string]bool, len(todos))
	for _, t := range todos {
		seen[t.ID] = true
		id := StuckTaskReminderID(t.ID)
		if !t.InProgress || t.InProgressSince == nil {
			e.RemoveReminder(sessionID, id)
			continue
		}
		elapsed := currentTurn - *t.InProgressSince
		if elapsed < stuckTaskTurns {
			e.RemoveReminder(sessionID, id)
			continue
		}
		e.AddReminder(sessionID, Reminder{
			ID:              id,
			Text:            StuckTaskText(t.ID, t.Content, elapsed),
			Priority:        TierGuidance,
			MinTurnsBetween: minTurnsBetween,
		})
	}

	// Items that have left the todo list entirely lose their reminder too.
	prefix := StuckTaskReminderID("")
	e.mu.Lock()
	defer e.mu.Unlock()
	if ss, ok := e.sessions[sessionID]; ok {
		for id := range ss.reminders {
			if strings.HasPrefix(id, prefix) && !seen[strings.TrimPrefix(id, prefix)] {
				delete(ss.reminders, id)
			}
		}
	}
}

// StuckTaskInput is the minimal todo-item view SyncStuckTaskReminders needs.
type StuckTaskInput struct {
	ID              string
	Content         string
	InProgress      bool
	InProgressSince *int
}
