// Package reminder implements the stuck-task detection component (§4.O):
// when a todo item has been in_progress for too long, emit a reminder
// naming it and the turn count. The package is intentionally small and
// policy-agnostic; callers (the sync package) decide when a todo item
// qualifies and call AddReminder/Snapshot accordingly.
package reminder

// Tier represents the priority tier for a reminder. Lower-valued tiers
// carry higher precedence when ordering output.
type Tier int

const (
	// TierSafety reminders are never suppressed by per-session caps.
	TierSafety Tier = iota
	// TierGuidance reminders are soft nudges; the first to be suppressed
	// when caps or spacing apply. Stuck-task reminders are this tier.
	TierGuidance
)

// Reminder describes concrete guidance to surface to the model.
type Reminder struct {
	// ID is the stable identifier for this reminder within a session,
	// used for de-duplication, rate limiting, and lookups. For stuck-task
	// reminders this is "stuck_task.<todoID>".
	ID string
	// Text is the natural-language guidance to surface.
	Text string
	// Priority controls ordering.
	Priority Tier
	// MaxPerRun caps how many times this reminder may be emitted in a
	// session. Zero means unlimited.
	MaxPerRun int
	// MinTurnsBetween enforces a minimum number of turns between
	// emissions. Zero means no rate limit.
	MinTurnsBetween int
}
