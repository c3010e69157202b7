package manual

import (
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// resolved is one concrete (kind, id) pair a target string expanded to.
type resolved struct {
	kind hashing.TargetType
	id   string
	hash string
}

// isBulkPattern reports whether target is one of the §4.F bulk tokens.
func isBulkPattern(target string) bool {
	switch target {
	case BulkTools, BulkMessages, BulkThinking, BulkStar, BulkAll:
		return true
	default:
		return false
	}
}

// expandBulk resolves a bulk pattern into every currently eligible
// (kind, id) pair. "Eligible" mirrors the single-hash discard preconditions:
// unpruned, and — for tools — unprotected.
func expandBulk(state *session.State, cfg Config, target string) []resolved {
	var out []resolved
	wantTools := target == BulkTools || target == BulkStar || target == BulkAll
	wantMessages := target == BulkMessages || target == BulkStar || target == BulkAll
	wantThinking := target == BulkThinking || target == BulkStar || target == BulkAll

	if wantTools {
		for callID, hash := range state.Hashes.CallsToHash {
			if state.Prune.IsToolPruned(callID) {
				continue
			}
			rec := state.ToolParameters[callID]
			if rec != nil && cfg.isProtectedTool(rec.Tool) {
				continue
			}
			out = append(out, resolved{kind: hashing.TargetTool, id: callID, hash: hash})
		}
	}
	if wantMessages {
		for partID, hash := range state.Hashes.PartIDToMessageHash {
			if state.Prune.IsMessagePruned(partID) {
				continue
			}
			out = append(out, resolved{kind: hashing.TargetMessage, id: partID, hash: hash})
		}
	}
	if wantThinking {
		for partID, hash := range state.Hashes.PartIDToReasoningHash {
			if state.Prune.IsReasoningPruned(partID) {
				continue
			}
			out = append(out, resolved{kind: hashing.TargetReasoning, id: partID, hash: hash})
		}
	}
	return out
}

// resolveSingle resolves one non-bulk hash target to its (kind, id), or
// reports ok=false if the hash is absent from every registry.
func resolveSingle(state *session.State, hash string) (resolved, bool) {
	switch hashing.DetectTargetType(state.Hashes, hash) {
	case hashing.TargetTool:
		id, _ := state.CallIDForHash(hash)
		return resolved{kind: hashing.TargetTool, id: id, hash: hash}, true
	case hashing.TargetMessage:
		id, _ := state.MessagePartIDForHash(hash)
		return resolved{kind: hashing.TargetMessage, id: id, hash: hash}, true
	case hashing.TargetReasoning:
		id, _ := state.ReasoningPartIDForHash(hash)
		return resolved{kind: hashing.TargetReasoning, id: id, hash: hash}, true
	default:
		return resolved{}, false
	}
}
