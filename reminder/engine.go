package reminder

import (
	"sort"
	"sync"
)

// Engine manages session-scoped reminders. It tracks per-session reminder
// state and enforces simple lifetime policies (per-session caps and
// turn-based rate limiting). Engines are safe for concurrent use, since a
// single process may run the reminder engine across multiple sessions
// concurrently even though an individual session's state (§5) is not.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

type sessionState struct {
	reminders map[string]*reminderState
}

type reminderState struct {
	reminder Reminder
	emitted  int
	lastTurn int
}

// NewEngine constructs an Engine.
func NewEngine() *Engine {
	return &Engine{sessions: make(map[string]*sessionState)}
}

// AddReminder registers or updates a reminder for the given session. When a
// reminder with the same ID already exists its configuration is replaced
// while preserving emission counters, so rate limiting continues to apply
// across content-only updates (e.g. the reminder's turn-count text
// changing as more turns elapse).
func (e *Engine) AddReminder(sessionID string, r Reminder) {
	if sessionID == "" || r.ID == "" || r.Text == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ss := e.ensureSessionLocked(sessionID)
	if st, ok := ss.reminders[r.ID]; ok {
		st.reminder = r
		return
	}
	ss.reminders[r.ID] = &reminderState{reminder: r}
}

// RemoveReminder removes a reminder with the given ID, e.g. once its todo
// item transitions out of in_progress.
func (e *Engine) RemoveReminder(sessionID, id string) {
	if sessionID == "" || id == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ss, ok := e.sessions[sessionID]
	if !ok {
		return
	}
	delete(ss.reminders, id)
}

// Snapshot returns the reminders that should be emitted for the given
// current turn, enforcing per-session caps and turn-based rate limits, and
// updating internal counters. Reminders are ordered by priority tier then
// ID for stable output.
func (e *Engine) Snapshot(sessionID string, turn int) []Reminder {
	if sessionID == "" {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ss, ok := e.sessions[sessionID]
	if !ok || len(ss.reminders) == 0 {
		return nil
	}
	out := make([]Reminder, 0, len(ss.reminders))
	for _, st := range ss.reminders {
		if !shouldEmit(st, turn) {
			continue
		}
		st.emitted++
		st.lastTurn = turn
		out = append(out, st.reminder)
	}
	if len(out) == 0 {
		return nil
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ClearSession removes all reminder state for the given session.
func (e *Engine) ClearSession(sessionID string) {
	if sessionID == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, sessionID)
}

func (e *Engine) ensureSessionLocked(sessionID string) *sessionState {
	ss, ok := e.sessions[sessionID]
	if ok {
		return ss
	}
	ss = &sessionState{reminders: make(map[string]*reminderState)}
	e.sessions[sessionID] = ss
	return ss
}

func shouldEmit(st *reminderState, turn int) bool {
	if st == nil {
		return false
	}
	r := st.reminder
	if r.MaxPerRun > 0 && st.emitted >= r.MaxPerRun && r.Priority != TierSafety {
		return false
	}
	if r.MinTurnsBetween > 0 && st.lastTurn > 0 {
		if delta := turn - st.lastTurn; delta >= 0 && delta < r.MinTurnsBetween {
			return false
		}
	}
	return true
}
