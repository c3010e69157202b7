package hooks

// EventType discriminates the hook events the engine publishes.
type EventType string

const (
	// EventAfterTool fires once §4.D sync and any enabled auto-strategies
	// have run after a tool completion.
	EventAfterTool EventType = "after_tool"
	// EventAfterTurn fires after a full chat turn, following the same
	// sync+auto-strategy pipeline plus opportunistic persistence.
	EventAfterTurn EventType = "after_turn"
	// EventManualOperation fires after a model-initiated discard/distill/
	// restore or pattern-replace call.
	EventManualOperation EventType = "manual_operation"
	// EventSessionEnd fires when the host signals a session has ended.
	EventSessionEnd EventType = "session_end"
)

// Event is the payload published on the Bus for every hook invocation.
type Event struct {
	Type      EventType
	SessionID string
	// Summary names what happened: the engine sets it to the manual
	// action ("discard", "distill", "restore") or "replace" on
	// manual-operation events and leaves it empty on the others.
	Summary string
	// TokensSaved is the token-savings estimate of the auto pipeline run
	// behind an after-tool or after-turn event; the engine leaves it zero
	// on manual-operation and session-end events.
	TokensSaved int
}
