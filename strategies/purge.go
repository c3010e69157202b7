package strategies

import (
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// PurgeErrors implements §4.E's Purge-errors strategy: an old, unpruned,
// unprotected, unprotected-file tool call stuck in an error state has its
// input elided (state.InputStripped), not fully discarded — the view
// assembler still shows the error message, per the model keeping visibility
// into what failed without paying for the (likely irrelevant, possibly
// large) input that produced it.
func PurgeErrors(state *session.State, cfg Config) {
	if !cfg.PurgeErrors.Enabled {
		return
	}
	threshold := cfg.PurgeErrors.threshold()
	for _, id := range state.ToolOrder() {
		rec := state.ToolParameters[id]
		if rec == nil || rec.Status != string(parts.StatusError) {
			continue
		}
		if !eligibleForAuto(state, cfg, id, rec) {
			continue
		}
		if state.CurrentTurn-rec.Turn < threshold {
			continue
		}
		if state.Prune.AddTool(id) {
			state.InputStripped[id] = true
			tokens := cfg.tokenCounter().Count(string(hashing.CanonicalJSON(rec.Parameters)))
			state.Stats.PurgeErrors.Add(1, tokens)
		}
	}
}
