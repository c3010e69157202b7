package hashing

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHash mints a random 6-hex-digit id not already present according to
// exists, regenerating on collision. It is used to mint message and
// reasoning hashes on demand (§4.B), where the hash is independent of
// content.
func RandomHash(exists func(candidate string) bool) (string, error) {
	for {
		var buf [3]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", err
		}
		candidate := hex.EncodeToString(buf[:])
		if !exists(candidate) {
			return candidate, nil
		}
	}
}

// TargetType is the classification of a 6-char candidate hash against the
// session's registries, per §4.B "target-type detection".
type TargetType string

const (
	TargetTool      TargetType = "tool_hash"
	TargetMessage   TargetType = "message_hash"
	TargetReasoning TargetType = "reasoning_hash"
	TargetUnknown   TargetType = "unknown_hash"
)

// Lookup is the minimal read-only view over the three hash registries
// needed for target-type detection.
type Lookup interface {
	HasToolHash(hash string) bool
	HasMessageHash(hash string) bool
	HasReasoningHash(hash string) bool
}

// DetectTargetType classifies candidate against the registries in l. It is a
// pure lookup with no side effects. Invalid format (not 6 lower-case hex) is
// rejected by the caller via IsValidHashFormat before this is called.
func DetectTargetType(l Lookup, candidate string) TargetType {
	switch {
	case l.HasToolHash(candidate):
		return TargetTool
	case l.HasMessageHash(candidate):
		return TargetMessage
	case l.HasReasoningHash(candidate):
		return TargetReasoning
	default:
		return TargetUnknown
	}
}

// IsValidHashFormat reports whether s is exactly 6 lower-case hex digits
// (the registry's collision-suffixed ids, e.g. "abc12_2", are not valid
// *input* hash formats — a caller always supplies the base 6-char form,
// and collision suffixes are an internal registry-storage detail).
func IsValidHashFormat(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
