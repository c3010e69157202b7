// Package sync implements the tool-cache synchronizer (§4.D): the walk over
// a session's current message list that assigns turn numbers, populates the
// hash registry and tool-parameter cache, runs the auto-supersede cascade,
// and tracks todo-list changes.
package sync

import "github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"

// AggressivePruning gates each auto-supersede rule independently
// (`strategies.aggressivePruning.*` in §6's configuration table).
type AggressivePruning struct {
	Hash        bool
	File        bool
	Todo        bool
	URL         bool
	StateQuery  bool
	Snapshot    bool
	Retry       bool
}

// TurnProtection skips hash registration and the supersede cascade for
// calls made within the last Turns turns.
type TurnProtection struct {
	Enabled bool
	Turns   int
}

// Config bundles the synchronizer's tunables, drawn from §6's configuration
// table plus SPEC_FULL.md's reminder-engine additions.
type Config struct {
	ProtectedTools        map[string]bool
	ProtectedFilePatterns []string
	TurnProtection        TurnProtection
	AggressivePruning     AggressivePruning

	// StuckTaskTurns gates the reminder engine's stuck-task sync (§4.O); a
	// zero value disables it entirely.
	StuckTaskTurns       int
	StuckTaskMinTurns    int

	// TokenCounter estimates tokens-saved for stats. A nil counter falls
	// back to a fresh default-capacity counter (ceil(len/4) heuristic only).
	TokenCounter *hashing.TokenCounter
}

func (c Config) tokenCounter() *hashing.TokenCounter {
	if c.TokenCounter != nil {
		return c.TokenCounter
	}
	return hashing.NewTokenCounter(nil, 0)
}

func (c Config) isProtectedTool(tool string) bool {
	return c.ProtectedTools != nil && c.ProtectedTools[tool]
}
