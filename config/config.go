// Package config aggregates the engine's per-package tunables into the
// single plain-object configuration §6 describes, and derives each
// package's own Config/Options type from it. Grounded on the
// functional-struct-with-defaults idiom used throughout the teacher (e.g.
// features/policy/basic/engine.go's Options: a plain struct whose
// zero-valued fields mean "use the default", normalized once at
// construction time rather than via functional options).
package config

import (
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/manual"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/notify"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/strategies"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/sync"
)

// NotificationOff disables the notification sink entirely (§6
// `pruneNotification`'s third value, beyond notify.Mode's minimal/detailed).
const NotificationOff notify.Mode = "off"

// Config is the single plain-object configuration of §6's table, plus
// SPEC_FULL.md's reminder-engine and fullyForget additions. Default()
// returns the documented defaults; every field it does not set (all but
// Enabled, ShowDistillation and Notification) defaults to its zero value.
type Config struct {
	// Enabled is the master switch (default true).
	Enabled bool
	// AutoPruneAfterTool controls whether the after-tool hook runs the
	// automatic strategies (default false).
	AutoPruneAfterTool bool

	ProtectedTools        []string
	ProtectedFilePatterns []string

	Deduplication     bool
	PurgeErrors       strategies.PurgeErrorsConfig
	Truncation        strategies.TruncateConfig
	AggressivePruning sync.AggressivePruning
	TurnProtection    sync.TurnProtection

	// FullyForget mirrors tools.discard.fullyForget (default false).
	FullyForget bool
	// ShowDistillation mirrors tools.distill.showDistillation (default
	// true). No derived package config reads it, and the notification text
	// never includes distill summaries whatever its value.
	ShowDistillation bool

	// StuckTaskTurns/StuckTaskMinTurns gate the reminder engine's
	// stuck-task sync (§4.O additions); StuckTaskTurns 0 disables it.
	StuckTaskTurns    int
	StuckTaskMinTurns int

	// Notification selects minimal/detailed/off (default "minimal").
	Notification notify.Mode

	// TokenCounter estimates tokens-saved across every package. A nil
	// counter makes each package fall back to a fresh default-capacity
	// counter using the ceil(len/4) heuristic.
	TokenCounter *hashing.TokenCounter
}

// Default returns the documented §6 defaults.
func Default() Config {
	return Config{
		Enabled:          true,
		ShowDistillation: true,
		Notification:     notify.ModeMinimal,
	}
}

func (c Config) protectedToolSet() map[string]bool {
	if len(c.ProtectedTools) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.ProtectedTools))
	for _, t := range c.ProtectedTools {
		set[t] = true
	}
	return set
}

// NotificationMode reports the effective notify.Mode and whether
// notifications are enabled at all.
func (c Config) NotificationMode() (notify.Mode, bool) {
	mode := c.Notification
	if mode == "" {
		mode = notify.ModeMinimal
	}
	if mode == NotificationOff {
		return mode, false
	}
	return mode, true
}

// Sync derives sync.Config from the aggregate configuration.
func (c Config) Sync() sync.Config {
	return sync.Config{
		ProtectedTools:        c.protectedToolSet(),
		ProtectedFilePatterns: c.ProtectedFilePatterns,
		TurnProtection:        c.TurnProtection,
		AggressivePruning:     c.AggressivePruning,
		StuckTaskTurns:        c.StuckTaskTurns,
		StuckTaskMinTurns:     c.StuckTaskMinTurns,
		TokenCounter:          c.TokenCounter,
	}
}

// Strategies derives strategies.Config from the aggregate configuration.
func (c Config) Strategies() strategies.Config {
	return strategies.Config{
		Deduplicate:           c.Deduplication,
		PurgeErrors:           c.PurgeErrors,
		Truncate:              c.Truncation,
		ProtectedTools:        c.protectedToolSet(),
		ProtectedFilePatterns: c.ProtectedFilePatterns,
		TokenCounter:          c.TokenCounter,
	}
}

// Manual derives manual.Config from the aggregate configuration.
func (c Config) Manual() manual.Config {
	return manual.Config{
		ProtectedTools:        c.protectedToolSet(),
		ProtectedFilePatterns: c.ProtectedFilePatterns,
		TokenCounter:          c.TokenCounter,
		FullyForget:           c.FullyForget,
	}
}
