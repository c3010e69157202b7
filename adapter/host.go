package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hooks"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
)

// MemoryHost is a minimal in-process hooks.Host: messages live in a map
// keyed by session id, and Prompt appends the delivered note as a
// synthetic assistant Text part. Suitable for demos and cmd/pruned, not
// for a real host integration. Grounded on registry/store/memory's
// mutex-guarded map idiom.
type MemoryHost struct {
	mu       sync.RWMutex
	sessions map[string][]parts.Message
}

// NewMemoryHost constructs an empty MemoryHost.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{sessions: make(map[string][]parts.Message)}
}

// Seed replaces sessionID's message list, for test/demo setup.
func (h *MemoryHost) Seed(sessionID string, messages []parts.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sessionID] = messages
}

// Messages returns the session's message list.
func (h *MemoryHost) Messages(_ context.Context, sessionID string) ([]parts.Message, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msgs, ok := h.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("adapter: unknown session %q", sessionID)
	}
	return append([]parts.Message(nil), msgs...), nil
}

// Prompt appends body as a synthetic assistant message, the in-memory
// stand-in for delivering a note to a host's UI. The message id is a
// session-prefixed UUID (grounded on runtime/agent/runtime/run_id.go's
// generateRunID: a normalized prefix plus uuid.NewString(), so ids stay
// unique across concurrent Prompt calls rather than racing on a length
// snapshot).
func (h *MemoryHost) Prompt(_ context.Context, sessionID string, body hooks.PromptBody) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg := parts.Message{
		ID:    fmt.Sprintf("%s-note-%s", sessionID, uuid.NewString()),
		Role:  parts.RoleAssistant,
		Parts: []parts.Part{parts.Text{Content: body.Text}},
	}
	h.sessions[sessionID] = append(h.sessions[sessionID], msg)
	return nil
}

var _ hooks.Host = (*MemoryHost)(nil)
