// Package jsonfile implements session.Store on top of one JSON file per
// session, at "<stateDir>/acp/<sessionId>.json" per spec §6.
package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// Store persists session state to a directory tree rooted at Dir, one file
// per session under an "acp" subdirectory.
type Store struct {
	Dir string
}

// New constructs a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.Dir, "acp", sessionID+".json")
}

// Save writes s to its session file, creating parent directories as
// needed. The write is not atomic across process crashes; single-writer
// usage (§9) makes this an acceptable tradeoff for the reference backend.
func (s *Store) Save(_ context.Context, st *session.State) error {
	p := s.path(st.SessionID)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := st.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Load restores state for sessionID, returning (nil, nil) when no file
// exists yet.
func (s *Store) Load(_ context.Context, sessionID string) (*session.State, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return session.Unmarshal(data)
}

var _ session.Store = (*Store)(nil)
