package hooks

import (
	"context"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
)

// PromptBody is the note message delivered back to the host UI (§6
// "prompt(sessionId, body)"). Ignored marks the part as not requiring a
// reply; NoReply suppresses any model turn the host might otherwise start.
type PromptBody struct {
	Text     string
	Ignored  bool
	NoReply  bool
}

// Host is the external interface the engine consumes from the hosting
// process (§6 "Host-provided (consumed)"). CLI/plugin-registration glue,
// config discovery, logger sinks, terminal rendering, tokenizer choice,
// and the chat wire protocol are all collaborators reached only through
// this interface — never modeled directly by the core.
type Host interface {
	// Messages returns the ordered message list for sessionID.
	Messages(ctx context.Context, sessionID string) ([]parts.Message, error)
	// Prompt delivers body back to the session's UI.
	Prompt(ctx context.Context, sessionID string, body PromptBody) error
}
