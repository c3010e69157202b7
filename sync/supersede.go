package sync

import (
	"bytes"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// eligible reports whether candidateID may be superseded by a new call
// registered at newTurn: it must have metadata, be unpruned, terminal
// (completed or error — the cascade's Retry rule specifically targets
// error-status predecessors, so "completed" in the cascade's general
// gating is read as "no longer pending/running"), an unprotected tool, on
// an unprotected file, and not from the same turn as the superseding call
// (ties within a turn never supersede each other).
func eligible(state *session.State, cfg Config, candidateID string, newTurn int) bool {
	rec, ok := state.ToolParameters[candidateID]
	if !ok || state.Prune.IsToolPruned(candidateID) {
		return false
	}
	if rec.Status != string(parts.StatusCompleted) && rec.Status != string(parts.StatusError) {
		return false
	}
	if cfg.isProtectedTool(rec.Tool) {
		return false
	}
	if path, ok := toolPath(rec.Parameters); ok && isProtectedFile(path, cfg.ProtectedFilePatterns) {
		return false
	}
	return rec.Turn != newTurn
}

// estimateTokens approximates the tokens an already-cached record would
// cost if left in context, from its cached input parameters (the engine
// does not retain tool output text in toolParameters, only input metadata,
// so the estimate is necessarily partial).
func estimateTokens(rec *session.ToolRecord, tc *hashing.TokenCounter) int {
	if rec == nil {
		return 0
	}
	return tc.Count(string(hashing.CanonicalJSON(rec.Parameters)))
}

// supersede marks candidateID pruned (if eligible and not already pruned)
// and credits stat with the token estimate.
func supersede(state *session.State, cfg Config, candidateID string, newTurn int, stat *session.CounterStat) {
	if !eligible(state, cfg, candidateID, newTurn) {
		return
	}
	rec := state.ToolParameters[candidateID]
	if state.Prune.AddTool(candidateID) {
		stat.Add(1, estimateTokens(rec, cfg.tokenCounter()))
	}
}

// registerHash computes the new call's content hash. A byte-identical
// repeat of an earlier call's (tool, canonicalized input) — regardless of
// that earlier call's status — always takes over its hash slot (the hash
// registry is a bijection, invariant 3, so two live calls can never share
// one hash); a genuine collision (different content, coincidentally equal
// digest) instead goes through the generic suffixed resolver.
//
// When the predecessor is completed, taking over its slot also applies the
// Hash auto-supersede rule (gated by AggressivePruning.Hash) to retire it.
// When the predecessor errored, it is left registered in cursors.retries
// for the Retry rule to resolve once a same-hash call succeeds — so the
// reassignment must happen unconditionally, not just when Hash pruning is
// enabled, or repeated failures would never share a lookup key.
func registerHash(state *session.State, cfg Config, p parts.Tool, t int) string {
	base := hashing.ToolHash(p.Name, p.Input)
	existingID, ok := state.CallIDForHash(base)
	if !ok || existingID == p.CallID {
		return state.RegisterCallHash(p.CallID, base)
	}
	existingRec, ok := state.ToolParameters[existingID]
	sameContent := ok && existingRec.Tool == p.Name &&
		bytes.Equal(hashing.CanonicalJSON(existingRec.Parameters), hashing.CanonicalJSON(p.Input))
	if !sameContent {
		return state.RegisterCallHash(p.CallID, base)
	}
	if existingRec.Status == string(parts.StatusCompleted) && cfg.AggressivePruning.Hash {
		supersede(state, cfg, existingID, t, &state.Stats.AutoSupersede.Hash)
	}
	state.ReassignCallHash(existingID, p.CallID, base)
	return base
}

// runCascade applies the File/Todo/URL/StateQuery/Snapshot/Retry rules for
// a freshly hash-registered tool call. Each rule is independently gated by
// its AggressivePruning flag and updates the cursor it reads.
func runCascade(state *session.State, cfg Config, p parts.Tool, t int, hash string) {
	runFileRule(state, cfg, p, t)
	runTodoRule(state, cfg, p, t)
	runURLRule(state, cfg, p, t)
	runStateQueryRule(state, cfg, p, t)
	runSnapshotRule(state, cfg, p, t)
	runRetryRule(state, cfg, p, t, hash)
}

func runFileRule(state *session.State, cfg Config, p parts.Tool, t int) {
	if !cfg.AggressivePruning.File {
		return
	}
	path, ok := toolPath(p.Input)
	if !ok {
		return
	}
	isWrite := p.Name == "write" || p.Name == "edit"
	isRead := p.Name == "read" || p.Name == "grep"
	if !isWrite && !isRead {
		return
	}
	touched := state.Cursors.Files[path]
	triggered := isWrite || len(touched) > 0
	if triggered {
		for priorID := range touched {
			supersede(state, cfg, priorID, t, &state.Stats.AutoSupersede.File)
		}
	}
	if touched == nil {
		touched = make(map[string]bool)
		state.Cursors.Files[path] = touched
	}
	touched[p.CallID] = true
}

func runTodoRule(state *session.State, cfg Config, p parts.Tool, t int) {
	if !cfg.AggressivePruning.Todo {
		return
	}
	if p.Status != parts.StatusCompleted {
		return
	}
	if p.Name != "todowrite" && p.Name != "todoread" {
		return
	}
	if prior := state.Cursors.TodoLastWriteCallID; prior != "" && prior != p.CallID {
		supersede(state, cfg, prior, t, &state.Stats.AutoSupersede.Todo)
	}
	state.Cursors.TodoLastWriteCallID = p.CallID
}

func runURLRule(state *session.State, cfg Config, p parts.Tool, t int) {
	if !cfg.AggressivePruning.URL {
		return
	}
	if p.Name != "webfetch" || p.Status != parts.StatusCompleted {
		return
	}
	url, ok := toolURL(p.Input)
	if !ok {
		return
	}
	seen := state.Cursors.URLs[url]
	for priorID := range seen {
		supersede(state, cfg, priorID, t, &state.Stats.AutoSupersede.URL)
	}
	if seen == nil {
		seen = make(map[string]bool)
		state.Cursors.URLs[url] = seen
	}
	seen[p.CallID] = true
}

func runStateQueryRule(state *session.State, cfg Config, p parts.Tool, t int) {
	if !cfg.AggressivePruning.StateQuery {
		return
	}
	if p.Name != "bash" || p.Status != parts.StatusCompleted {
		return
	}
	cmd, ok := toolCommand(p.Input)
	if !ok || !isStateQueryCommand(cmd) {
		return
	}
	seen := state.Cursors.StateQueries[cmd]
	for priorID := range seen {
		supersede(state, cfg, priorID, t, &state.Stats.AutoSupersede.StateQuery)
	}
	if seen == nil {
		seen = make(map[string]bool)
		state.Cursors.StateQueries[cmd] = seen
	}
	seen[p.CallID] = true
}

func runSnapshotRule(state *session.State, cfg Config, p parts.Tool, t int) {
	if !cfg.AggressivePruning.Snapshot {
		return
	}
	if p.Name != "snapshot" {
		return
	}
	for priorID := range state.Cursors.SnapshotAllCallIDs {
		supersede(state, cfg, priorID, t, &state.Stats.AutoSupersede.Snapshot)
	}
	state.Cursors.SnapshotAllCallIDs[p.CallID] = true
	state.Cursors.SnapshotLatestCallID = p.CallID
}

func runRetryRule(state *session.State, cfg Config, p parts.Tool, t int, hash string) {
	key := p.Name + "|" + hash
	switch p.Status {
	case parts.StatusError:
		state.Cursors.RetryPending[key] = append(state.Cursors.RetryPending[key], p.CallID)
	case parts.StatusCompleted:
		if !cfg.AggressivePruning.Retry {
			return
		}
		pending := state.Cursors.RetryPending[key]
		if len(pending) == 0 {
			return
		}
		for _, priorID := range pending {
			supersede(state, cfg, priorID, t, &state.Stats.AutoSupersede.Retry)
		}
		delete(state.Cursors.RetryPending, key)
	}
}
