package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON renders input's canonicalized form (§4.B) as deterministic
// JSON bytes, suitable both for hashing and for byte-equality comparisons
// of "is this the same call content as that one" (used by the Hash
// auto-supersede rule to distinguish a genuine repeat call from an
// unrelated hash collision).
func CanonicalJSON(input any) []byte {
	payload, err := json.Marshal(Canonicalize(input))
	if err != nil {
		// Canonicalize only ever produces json.Marshal-able types
		// (canonicalKV, []any, and JSON scalars), so this cannot happen in
		// practice.
		return nil
	}
	return payload
}

// ToolHash computes the 6-hex-digit content hash of a tool call from its
// name and canonicalized input, per §4.B.
func ToolHash(toolName string, input any) string {
	payload := CanonicalJSON(input)
	sum := sha256.Sum256(append([]byte(toolName), payload...))
	return hex.EncodeToString(sum[:])[:6]
}

// CollisionResolver implements §4.B's collision-resolution rule, independent
// of which of the three registries (calls, messages, reasoning) is in use.
// The caller owns the registry; the resolver only asks it which keys are
// taken.
type CollisionResolver struct {
	// Taken reports whether a candidate hash key is already registered to a
	// different id than the one being registered. It must return false for
	// a key that is free or already mapped to that id itself.
	Taken func(candidate string) bool
}

// Resolve returns the hash that should be bound to the id being
// registered, given that the "natural" hash is base. If base is free (or
// already bound to that id, as Taken reports), it is
// returned unchanged. Otherwise the last hex digit is replaced with
// "_<seq>", seq starting at 2 and incrementing until a free key is found.
func (r CollisionResolver) Resolve(base string) string {
	if !r.Taken(base) {
		return base
	}
	prefix := base
	if len(prefix) > 0 {
		prefix = prefix[:len(prefix)-1]
	}
	for seq := 2; ; seq++ {
		candidate := fmt.Sprintf("%s_%d", prefix, seq)
		if !r.Taken(candidate) {
			return candidate
		}
	}
}
