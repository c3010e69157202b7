// Package manual implements the model-facing `context` tool (§4.F):
// discard / distill / restore dispatched over tool, message, and reasoning
// targets, including the bulk patterns and the no-op notification case.
package manual

import (
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
)

// Action is the context tool's action parameter.
type Action string

const (
	ActionDiscard Action = "discard"
	ActionDistill Action = "distill"
	ActionRestore Action = "restore"
)

// Bulk pattern targets (§4.F).
const (
	BulkTools     = "[tools]"
	BulkMessages  = "[messages]"
	BulkThinking  = "[thinking]"
	BulkStar      = "[*]"
	BulkAll       = "[all]"
)

// TargetSpec is one `[target]` or `[target, summary]` tuple from the
// context tool's call arguments.
type TargetSpec struct {
	Target  string
	Summary string
}

// Config bundles the manual-operation tunables.
type Config struct {
	ProtectedTools        map[string]bool
	ProtectedFilePatterns []string
	TokenCounter          *hashing.TokenCounter

	// FullyForget mirrors tools.discard.fullyForget (§6): pruned tool calls
	// are omitted entirely by the view assembler and restore is disallowed,
	// rather than rendered as a discard placeholder.
	FullyForget bool

	// MessageTokenHeuristic/ReasoningTokenHeuristic are the default
	// tokens-saved estimates used when discarding text/reasoning parts
	// (§4.F: "default heuristic: 500 for text, 2000 for reasoning").
	MessageTokenHeuristic   int
	ReasoningTokenHeuristic int
}

func (c Config) messageTokens() int {
	if c.MessageTokenHeuristic > 0 {
		return c.MessageTokenHeuristic
	}
	return 500
}

func (c Config) reasoningTokens() int {
	if c.ReasoningTokenHeuristic > 0 {
		return c.ReasoningTokenHeuristic
	}
	return 2000
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

// AppliedTarget records one target a Dispatch call actually mutated state
// for.
type AppliedTarget struct {
	Target      string
	Kind        hashing.TargetType
	ID          string
	TokensSaved int
}

// Result is the outcome of a Dispatch call: what was applied, and every
// identifier the call attempted to resolve (for the no-op notification
// when nothing applied).
type Result struct {
	Action    Action
	Applied   []AppliedTarget
	Attempted []string
}

// Noop reports whether resolution yielded zero valid targets — the engine
// still emits a notification in this case (§4.F "No-op notification").
func (r *Result) Noop() bool { return len(r.Applied) == 0 }
