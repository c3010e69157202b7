// Package strategies implements the automatic, re-entrant pruning passes of
// §4.E: deduplication (exact-signature and overlapping-range), error
// purging, and head/tail output truncation. Every strategy here is
// idempotent — running it again on unchanged state produces no further
// changes.
package strategies

import "github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"

// PurgeErrorsConfig gates the Purge-errors strategy.
type PurgeErrorsConfig struct {
	Enabled bool
	Turns   int // default 4 when Enabled and Turns <= 0
}

// TruncateConfig gates the head/tail truncation strategy.
type TruncateConfig struct {
	Enabled     bool
	TargetTools map[string]bool // default: read, grep, glob, bash
	MinTurnsOld int
	MaxTokens   int     // default 2000
	HeadRatio   float64 // default 0.5
	TailRatio   float64 // default 0.25
}

// Config bundles the three automatic strategies' tunables plus the shared
// protection settings they all respect (invariant 6).
type Config struct {
	Deduplicate           bool
	PurgeErrors           PurgeErrorsConfig
	Truncate              TruncateConfig
	ProtectedTools        map[string]bool
	ProtectedFilePatterns []string
	TokenCounter          *hashing.TokenCounter
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

func (c PurgeErrorsConfig) threshold() int {
	if c.Turns > 0 {
		return c.Turns
	}
	return 4
}

func (c TruncateConfig) targetTools() map[string]bool {
	if c.TargetTools != nil {
		return c.TargetTools
	}
	return map[string]bool{"read": true, "grep": true, "glob": true, "bash": true}
}

func (c TruncateConfig) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 2000
}

func (c TruncateConfig) headRatio() float64 {
	if c.HeadRatio > 0 {
		return c.HeadRatio
	}
	return 0.5
}

func (c TruncateConfig) tailRatio() float64 {
	if c.TailRatio > 0 {
		return c.TailRatio
	}
	return 0.25
}
