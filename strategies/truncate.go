package strategies

import (
	"fmt"
	"math"
	"strings"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// Truncate implements §4.E's Head/tail truncate strategy. Unlike
// Deduplicate and PurgeErrors it mutates the message objects directly
// rather than the prune plan — the output itself is replaced in place, an
// irreversible change from state alone (restore never undoes it, per
// §4.F).
func Truncate(state *session.State, cfg Config, messages []parts.Message) {
	if !cfg.Truncate.Enabled {
		return
	}
	targets := cfg.Truncate.targetTools()
	tc := cfg.tokenCounter()
	maxTok := cfg.Truncate.maxTokens()

	for m := range messages {
		for p := range messages[m].Parts {
			tool, ok := messages[m].Parts[p].(parts.Tool)
			if !ok || !targets[tool.Name] || tool.Status != parts.StatusCompleted || tool.Output == "" {
				continue
			}
			if state.Prune.IsToolPruned(tool.CallID) || cfg.isProtectedTool(tool.Name) {
				continue
			}
			if path, ok := toolPath(tool.Input); ok && isProtectedFile(path, cfg.ProtectedFilePatterns) {
				continue
			}
			rec := state.ToolParameters[tool.CallID]
			if rec == nil || state.CurrentTurn-rec.Turn < cfg.Truncate.MinTurnsOld {
				continue
			}
			total := tc.Count(tool.Output)
			if total <= maxTok {
				continue
			}
			truncated, ok := truncateOutput(tool.Output, maxTok, cfg.Truncate.headRatio(), cfg.Truncate.tailRatio(), tc)
			if !ok {
				continue
			}
			tool.Output = truncated
			messages[m].Parts[p] = tool
			state.Stats.Truncation.Add(1, total-tc.Count(truncated))
		}
	}
}

// truncateOutput replaces text with head || marker || tail, each aligned to
// line boundaries and budgeted in tokens. It reports false (leaving the
// caller to skip the mutation) when head and tail would overlap.
func truncateOutput(text string, maxTokens int, headRatio, tailRatio float64, tc *hashing.TokenCounter) (string, bool) {
	headBudget := int(math.Floor(float64(maxTokens) * headRatio))
	tailBudget := int(math.Floor(float64(maxTokens) * tailRatio))
	lines := strings.Split(text, "\n")
	n := len(lines)

	headEnd := 0
	var headText string
	for headEnd < n {
		candidate := strings.Join(lines[:headEnd+1], "\n")
		if headEnd > 0 && tc.Count(candidate) > headBudget {
			break
		}
		headText = candidate
		headEnd++
	}

	tailStart := n
	var tailText string
	for tailStart > headEnd {
		candidate := strings.Join(lines[tailStart-1:], "\n")
		if tailStart < n && tc.Count(candidate) > tailBudget {
			break
		}
		tailText = candidate
		tailStart--
	}

	if tailStart <= headEnd {
		return "", false
	}
	marker := fmt.Sprintf("\n\n[... %d lines truncated to save context ...]\n\n", tailStart-headEnd)
	return headText + marker + tailText, true
}
