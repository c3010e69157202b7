package strategies

import (
	"math"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// Deduplicate implements §4.E's Deduplicate strategy: exact-signature
// grouping over every unpruned, unprotected, unprotected-file tool call,
// keeping only the most recent of each group, followed by overlapping-range
// deduplication of the surviving `read` calls.
func Deduplicate(state *session.State, cfg Config) {
	if !cfg.Deduplicate {
		return
	}
	order := state.ToolOrder()

	groups := make(map[string][]string) // signature -> call ids, chronological
	for _, id := range order {
		rec := state.ToolParameters[id]
		if !eligibleForAuto(state, cfg, id, rec) {
			continue
		}
		sig := rec.Tool + "|" + string(hashing.CanonicalJSON(rec.Parameters))
		groups[sig] = append(groups[sig], id)
	}
	for _, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		// ids is in chronological (insertion) order; keep the last.
		for _, id := range ids[:len(ids)-1] {
			pruneWithStat(state, cfg, id, &state.Stats.Deduplication)
		}
	}

	deduplicateOverlappingReads(state, cfg, order)
}

type readRange struct {
	callID   string
	position int
	path     string
	offset   int
	end      float64 // math.Inf(1) when the call has no limit
}

// deduplicateOverlappingReads implements the overlapping-range pass: a read
// whose (offset, end) is contained in a chronologically later read's range
// on the same file is prunable; identical ranges resolve to keeping the
// chronologically later one.
func deduplicateOverlappingReads(state *session.State, cfg Config, order []string) {
	byPath := make(map[string][]readRange)
	for i, id := range order {
		rec := state.ToolParameters[id]
		if rec == nil || rec.Tool != "read" || !eligibleForAuto(state, cfg, id, rec) {
			continue
		}
		path, ok := toolPath(rec.Parameters)
		if !ok {
			continue
		}
		offset, _ := toolNumber(rec.Parameters, "offset")
		end := math.Inf(1)
		if limit, ok := toolNumber(rec.Parameters, "limit"); ok {
			end = float64(offset + limit)
		}
		byPath[path] = append(byPath[path], readRange{callID: id, position: i, path: path, offset: offset, end: end})
	}

	for _, ranges := range byPath {
		for i := range ranges {
			a := ranges[i]
			if state.Prune.IsToolPruned(a.callID) {
				continue
			}
			for j := range ranges {
				if i == j {
					continue
				}
				b := ranges[j]
				if state.Prune.IsToolPruned(b.callID) {
					continue
				}
				identical := a.offset == b.offset && a.end == b.end
				containedInB := a.offset >= b.offset && a.end <= b.end
				switch {
				case identical:
					if b.position > a.position {
						pruneWithStat(state, cfg, a.callID, &state.Stats.Deduplication)
					}
				case containedInB && b.position > a.position:
					pruneWithStat(state, cfg, a.callID, &state.Stats.Deduplication)
				}
			}
		}
	}
}

// eligibleForAuto reports whether a tool call may be touched by an
// automatic strategy: it has metadata, is not already pruned, its tool is
// unprotected, and its file path (if any) is unprotected.
func eligibleForAuto(state *session.State, cfg Config, callID string, rec *session.ToolRecord) bool {
	if rec == nil || state.Prune.IsToolPruned(callID) {
		return false
	}
	if cfg.isProtectedTool(rec.Tool) {
		return false
	}
	if path, ok := toolPath(rec.Parameters); ok && isProtectedFile(path, cfg.ProtectedFilePatterns) {
		return false
	}
	return true
}

func pruneWithStat(state *session.State, cfg Config, callID string, stat *session.CounterStat) {
	rec := state.ToolParameters[callID]
	if state.Prune.AddTool(callID) {
		stat.Add(1, cfg.tokenCounter().Count(string(hashing.CanonicalJSON(rec.Parameters))))
	}
}
