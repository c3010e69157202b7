package session

import (
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
)

// RegisterToolRecord inserts or updates the cached metadata for a tool call
// (§4.D step 1, last clause: "insert {tool, parameters, status, error,
// turn} into toolParameters"). It returns the call ids evicted to respect
// MaxToolCacheSize (invariant 5), whose hash-registry entries are removed as
// well (invariant 5's "evicting a call id also removes its hash-registry
// entries").
func (s *State) RegisterToolRecord(callID, tool string, params any, status, errMsg string, turn int) []string {
	if existing, ok := s.ToolParameters[callID]; ok {
		existing.Tool = tool
		existing.Parameters = params
		existing.Status = status
		existing.Error = errMsg
		existing.Turn = turn
		return nil
	}
	s.insertSeq++
	s.ToolParameters[callID] = &ToolRecord{
		Tool:       tool,
		Parameters: params,
		Status:     status,
		Error:      errMsg,
		Turn:       turn,
		insertSeq:  s.insertSeq,
	}
	s.toolOrder = append(s.toolOrder, callID)
	return s.evictOverflow()
}

func (s *State) evictOverflow() []string {
	max := s.MaxToolCacheSize
	if max <= 0 {
		max = DefaultMaxToolCacheSize
	}
	var evicted []string
	for len(s.toolOrder) > max {
		oldest := s.toolOrder[0]
		s.toolOrder = s.toolOrder[1:]
		delete(s.ToolParameters, oldest)
		s.forgetHashForCall(oldest)
		evicted = append(evicted, oldest)
	}
	return evicted
}

func (s *State) forgetHashForCall(callID string) {
	if h, ok := s.Hashes.CallsToHash[callID]; ok {
		delete(s.Hashes.CallsToHash, callID)
		delete(s.Hashes.HashToCalls, h)
	}
}

// ToolOrder returns call ids in FIFO insertion order, the same order the
// synchronizer observed them in. Automatic strategies iterate this order to
// get a stable, chronological "most recent wins" tie-break without relying
// on turn numbers, which are not unique per call.
func (s *State) ToolOrder() []string {
	return append([]string(nil), s.toolOrder...)
}

// HasToolRecord reports whether callID has cached metadata.
func (s *State) HasToolRecord(callID string) bool {
	_, ok := s.ToolParameters[callID]
	return ok
}

// RegisterCallHash binds callID to its content hash, resolving collisions
// per §4.B, and returns the final hash recorded bi-directionally
// (invariant 3). protected tools must never reach this call (invariant 4
// is enforced by the caller, the synchronizer, before computing a hash at
// all).
func (s *State) RegisterCallHash(callID, baseHash string) string {
	resolver := hashing.CollisionResolver{
		Taken: func(candidate string) bool {
			existing, ok := s.Hashes.HashToCalls[candidate]
			return ok && existing != callID
		},
	}
	final := resolver.Resolve(baseHash)
	s.Hashes.CallsToHash[callID] = final
	s.Hashes.HashToCalls[final] = callID
	return final
}

// ReassignCallHash moves an already-registered hash from oldCallID to
// newCallID, used by the Hash auto-supersede rule (§4.D) when a repeat call
// with byte-identical canonical input takes over the hash its predecessor
// held, rather than being pushed into a suffixed collision slot.
func (s *State) ReassignCallHash(oldCallID, newCallID, hash string) {
	delete(s.Hashes.CallsToHash, oldCallID)
	s.Hashes.CallsToHash[newCallID] = hash
	s.Hashes.HashToCalls[hash] = newCallID
}

// CallIDForHash resolves a tool hash to its call id.
func (s *State) CallIDForHash(hash string) (string, bool) {
	id, ok := s.Hashes.HashToCalls[hash]
	return id, ok
}

// HashForCall resolves a call id to its registered hash.
func (s *State) HashForCall(callID string) (string, bool) {
	h, ok := s.Hashes.CallsToHash[callID]
	return h, ok
}

// RegisterMessageHash mints (or returns the existing) hash for a message
// part id.
func (s *State) RegisterMessageHash(partID string) (string, error) {
	if h, ok := s.Hashes.PartIDToMessageHash[partID]; ok {
		return h, nil
	}
	h, err := hashing.RandomHash(func(c string) bool {
		_, exists := s.Hashes.MessageHashToPartID[c]
		return exists
	})
	if err != nil {
		return "", err
	}
	s.Hashes.MessageHashToPartID[h] = partID
	s.Hashes.PartIDToMessageHash[partID] = h
	return h, nil
}

// RegisterReasoningHash mints (or returns the existing) hash for a
// reasoning part id.
func (s *State) RegisterReasoningHash(partID string) (string, error) {
	if h, ok := s.Hashes.PartIDToReasoningHash[partID]; ok {
		return h, nil
	}
	h, err := hashing.RandomHash(func(c string) bool {
		_, exists := s.Hashes.ReasoningHashToPartID[c]
		return exists
	})
	if err != nil {
		return "", err
	}
	s.Hashes.ReasoningHashToPartID[h] = partID
	s.Hashes.PartIDToReasoningHash[partID] = h
	return h, nil
}

// MessageHashForPart resolves a message part id to its hash, the reverse
// direction of RegisterMessageHash — used by the view assembler to render
// a discard placeholder's hash.
func (s *State) MessageHashForPart(partID string) (string, bool) {
	h, ok := s.Hashes.PartIDToMessageHash[partID]
	return h, ok
}

// MessagePartIDForHash resolves a message hash to its part id.
func (s *State) MessagePartIDForHash(hash string) (string, bool) {
	id, ok := s.Hashes.MessageHashToPartID[hash]
	return id, ok
}

// ReasoningPartIDForHash resolves a reasoning hash to its part id.
func (s *State) ReasoningPartIDForHash(hash string) (string, bool) {
	id, ok := s.Hashes.ReasoningHashToPartID[hash]
	return id, ok
}

// RecordDiscard appends an audit-log entry (§3 discardHistory).
func (s *State) RecordDiscard(entry DiscardEntry) {
	s.DiscardHistory = append(s.DiscardHistory, entry)
}
