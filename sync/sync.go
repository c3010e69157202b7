package sync

import (
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/reminder"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// Sync is the synchronizer's entry point (§4.D): sync(state, config,
// messages). Engine is optional; when non-nil its stuck-task reminders are
// refreshed against the current todo list as the final step.
func Sync(state *session.State, cfg Config, messages []parts.Message, engine *reminder.Engine) {
	// messages is the full current message list (idempotent re-walks rely on
	// "skip if already present in toolParameters"), so turn numbering always
	// restarts from zero; turn protection compares each tool's turn against
	// the walk's final count, not the count-so-far, so a pre-pass
	// establishes it before any tool is processed.
	finalTurn := 0
	for _, msg := range messages {
		if isCompacted(msg, state) || msg.Role != parts.RoleAssistant {
			continue
		}
		for _, part := range msg.Parts {
			if _, ok := part.(parts.StepStart); ok {
				finalTurn++
			}
		}
	}
	if finalTurn > state.CurrentTurn {
		state.CurrentTurn = finalTurn
	}

	turn := 0
	var lastTodowriteCallID, lastTodowriteOutput string
	lastTodowriteTurn := -1

	for _, msg := range messages {
		if isCompacted(msg, state) {
			continue
		}
		if msg.Role != parts.RoleAssistant {
			continue
		}
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case parts.StepStart:
				turn++
			case parts.Tool:
				handleToolPart(state, cfg, p, turn)
				if p.Name == "todowrite" && p.Status == parts.StatusCompleted && turn >= lastTodowriteTurn {
					lastTodowriteCallID = p.CallID
					lastTodowriteOutput = p.Output
					lastTodowriteTurn = turn
				}
			}
		}
	}

	syncTodos(state, state.CurrentTurn, lastTodowriteCallID, lastTodowriteOutput)

	if engine != nil && cfg.StuckTaskTurns > 0 {
		engine.SyncStuckTaskReminders(state.SessionID, stuckTaskInputs(state), state.CurrentTurn, cfg.StuckTaskTurns, cfg.StuckTaskMinTurns)
	}
}

// isCompacted reports whether msg falls at or before state.LastCompaction
// and is therefore invisible to the engine. A zero CreatedAt (host does not
// track message timestamps) or zero LastCompaction (nothing compacted yet)
// means nothing is treated as compacted.
func isCompacted(msg parts.Message, state *session.State) bool {
	if msg.CreatedAt.IsZero() || state.LastCompaction.IsZero() {
		return false
	}
	return !msg.CreatedAt.After(state.LastCompaction)
}

// handleToolPart implements §4.D step 1's `tool` case.
func handleToolPart(state *session.State, cfg Config, p parts.Tool, t int) {
	if state.HasToolRecord(p.CallID) {
		return
	}

	turnProtected := cfg.TurnProtection.Enabled && state.CurrentTurn-t < cfg.TurnProtection.Turns
	if !turnProtected && !cfg.isProtectedTool(p.Name) {
		hash := registerHash(state, cfg, p, t)
		runCascade(state, cfg, p, t, hash)
	}

	state.RegisterToolRecord(p.CallID, p.Name, p.Input, string(p.Status), p.Err, t)
}
