package manual

import (
	"time"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/toolerrors"
)

// Dispatch executes the `context` tool (§4.F) against state, applying
// action to every target in targets, in order. A precondition failure that
// the spec calls out as "reject the whole context call" (invalid hash
// format, a protected tool, a missing distill summary) aborts before any
// state mutation and returns a *toolerrors.ToolError. Unknown hashes and
// already-pruned targets are instead skipped per-target; if every target
// is skipped, Dispatch still returns a successful, empty Result so the
// caller can emit the no-op notification (§4.F).
func Dispatch(state *session.State, cfg Config, action Action, targets []TargetSpec) (*Result, error) {
	if err := validate(state, cfg, action, targets); err != nil {
		return nil, err
	}

	result := &Result{Action: action}
	for _, t := range targets {
		result.Attempted = append(result.Attempted, t.Target)

		var members []resolved
		if isBulkPattern(t.Target) {
			members = expandBulk(state, cfg, t.Target)
		} else {
			r, ok := resolveSingle(state, t.Target)
			if !ok {
				continue // KindUnknownHash: skip this target
			}
			members = []resolved{r}
		}

		for _, m := range members {
			applied, ok := apply(state, cfg, action, m, t.Summary)
			if ok {
				result.Applied = append(result.Applied, applied)
			}
		}
	}
	return result, nil
}

// validate enforces the call-level rejection preconditions, checked across
// every target before any mutation.
func validate(state *session.State, cfg Config, action Action, targets []TargetSpec) error {
	for _, t := range targets {
		if isBulkPattern(t.Target) {
			if action == ActionDistill && t.Summary == "" {
				return toolerrors.New(toolerrors.KindMissingSummary,
					"distill requires a summary for bulk target "+t.Target)
			}
			continue
		}
		if !hashing.IsValidHashFormat(t.Target) {
			return toolerrors.New(toolerrors.KindInvalidHashFormat, "invalid target hash: "+t.Target)
		}
		if action != ActionDistill {
			continue
		}
		if t.Summary == "" {
			return toolerrors.New(toolerrors.KindMissingSummary, "distill requires a summary for "+t.Target)
		}
		// A protected tool is only checkable once we know the target is a
		// tool hash; unknown hashes are left for per-target skip handling.
		if r, ok := resolveSingle(state, t.Target); ok && r.kind == hashing.TargetTool {
			if rec := state.ToolParameters[r.id]; rec != nil && cfg.isProtectedTool(rec.Tool) {
				return toolerrors.New(toolerrors.KindProtectedTool, "protected tool: "+rec.Tool)
			}
		}
	}
	if action == ActionDiscard {
		for _, t := range targets {
			if isBulkPattern(t.Target) {
				continue
			}
			if r, ok := resolveSingle(state, t.Target); ok && r.kind == hashing.TargetTool {
				if rec := state.ToolParameters[r.id]; rec != nil && cfg.isProtectedTool(rec.Tool) {
					return toolerrors.New(toolerrors.KindProtectedTool, "protected tool: "+rec.Tool)
				}
			}
		}
	}
	if action == ActionRestore {
		for _, t := range targets {
			if isBulkPattern(t.Target) {
				continue
			}
			if r, ok := resolveSingle(state, t.Target); ok && r.kind == hashing.TargetTool && state.Forgotten[r.id] {
				return RestoreForgottenErr(t.Target)
			}
		}
	}
	return nil
}

// apply performs action on a single resolved member, returning ok=false
// when the member is a natural per-target no-op (already in the state
// action would produce).
func apply(state *session.State, cfg Config, action Action, m resolved, summary string) (AppliedTarget, bool) {
	switch action {
	case ActionDiscard:
		return applyDiscard(state, cfg, m, "")
	case ActionDistill:
		return applyDiscard(state, cfg, m, summary)
	case ActionRestore:
		return applyRestore(state, cfg, m)
	default:
		return AppliedTarget{}, false
	}
}

// applyDiscard implements both Discard and Distill (§4.F): distill is
// discard's resolution plus a stored summary, except for reasoning targets
// where distill is a plain discard that still credits stats.distillation.
func applyDiscard(state *session.State, cfg Config, m resolved, summary string) (AppliedTarget, bool) {
	switch m.kind {
	case hashing.TargetTool:
		if state.Prune.IsToolPruned(m.id) {
			return AppliedTarget{}, false
		}
		rec := state.ToolParameters[m.id]
		tokens := 0
		if rec != nil {
			tokens = cfg.tokenCounter().Count(string(hashing.CanonicalJSON(rec.Parameters)))
		}
		state.Prune.AddTool(m.id)
		if cfg.FullyForget {
			state.Forgotten[m.id] = true
		}
		if summary != "" {
			state.Distilled[m.id] = summary
			state.Stats.Distillation.Add(1, tokens)
		} else {
			state.Stats.ManualDiscard.Tool.Add(1, tokens)
		}
		reason := string(ActionDiscard)
		if summary != "" {
			reason = string(ActionDistill)
		}
		state.RecordDiscard(session.DiscardEntry{Timestamp: time.Now(), Hashes: []string{m.hash}, TokensSaved: tokens, Reason: reason})
		return AppliedTarget{Target: m.hash, Kind: m.kind, ID: m.id, TokensSaved: tokens}, true

	case hashing.TargetMessage:
		if state.Prune.IsMessagePruned(m.id) {
			return AppliedTarget{}, false
		}
		tokens := cfg.messageTokens()
		state.Prune.AddMessage(m.id)
		if summary != "" {
			state.Distilled[m.id] = summary
			state.Stats.Distillation.Add(1, tokens)
		} else {
			state.Stats.ManualDiscard.Message.Add(1, tokens)
		}
		return AppliedTarget{Target: m.hash, Kind: m.kind, ID: m.id, TokensSaved: tokens}, true

	case hashing.TargetReasoning:
		if state.Prune.IsReasoningPruned(m.id) {
			return AppliedTarget{}, false
		}
		tokens := cfg.reasoningTokens()
		state.Prune.AddReasoning(m.id)
		// Distill on reasoning is an alias of discard for state purposes
		// (§4.F): no summary is stored, but stats still land under
		// distillation when a summary was supplied.
		if summary != "" {
			state.Stats.Distillation.Add(1, tokens)
		} else {
			state.Stats.ManualDiscard.Thinking.Add(1, tokens)
		}
		return AppliedTarget{Target: m.hash, Kind: m.kind, ID: m.id, TokensSaved: tokens}, true

	default:
		return AppliedTarget{}, false
	}
}

// applyRestore implements §4.F Restore: the inverse of discard/distill.
// A forgotten (fullyForget) call id is left untouched here; validation
// has already rejected the whole call with RestoreForgottenErr before
// this runs (Open Question iii). Any other unpruned target is a silent
// no-op.
func applyRestore(state *session.State, cfg Config, m resolved) (AppliedTarget, bool) {
	switch m.kind {
	case hashing.TargetTool:
		if state.Forgotten[m.id] {
			return AppliedTarget{}, false
		}
		if !state.Prune.RemoveTool(m.id) {
			return AppliedTarget{}, false
		}
		delete(state.Distilled, m.id)
		delete(state.InputStripped, m.id)
		return AppliedTarget{Target: m.hash, Kind: m.kind, ID: m.id}, true

	case hashing.TargetMessage:
		if !state.Prune.RemoveMessage(m.id) {
			return AppliedTarget{}, false
		}
		delete(state.Distilled, m.id)
		return AppliedTarget{Target: m.hash, Kind: m.kind, ID: m.id}, true

	case hashing.TargetReasoning:
		if !state.Prune.RemoveReasoning(m.id) {
			return AppliedTarget{}, false
		}
		return AppliedTarget{Target: m.hash, Kind: m.kind, ID: m.id}, true

	default:
		return AppliedTarget{}, false
	}
}

// RestoreForgottenErr builds the error that rejects a whole restore call
// when any of its targets is a forgotten (fullyForget) call id.
func RestoreForgottenErr(hash string) error {
	return toolerrors.New(toolerrors.KindAlreadyForgotten, "cannot restore forgotten target: "+hash)
}
