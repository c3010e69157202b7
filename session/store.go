package session

import "context"

// Store persists and restores session state (§4.C, §6 "Persisted state
// layout"). Persistence is best-effort: a failure is returned to the
// caller as the backend's own error (the bundled backends do not wrap it
// in a toolerrors.ToolError), but callers
// must treat it as logged-and-swallowed per §3/§7 — in-memory state
// remains authoritative regardless of Save's outcome.
type Store interface {
	// Save serializes s to the backend. Implementations should overwrite
	// any prior document for the same SessionID.
	Save(ctx context.Context, s *State) error
	// Load restores previously saved state for sessionID. Implementations
	// return (nil, nil) — not an error — when no state has been saved yet,
	// so callers can create a fresh State via session.New.
	Load(ctx context.Context, sessionID string) (*State, error)
}
