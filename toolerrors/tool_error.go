// Package toolerrors provides structured error types for the engine's
// manual-operation and pattern-replacement failures. ToolError preserves
// message and causal context while still implementing the standard error
// interface, and tags each failure with a Kind so callers can distinguish
// the error-handling outcomes of spec §7 via errors.Is.
package toolerrors

import (
	"errors"
	"fmt"
)

// Kind identifies which §7 error-handling outcome an error represents.
type Kind string

const (
	// KindInvalidHashFormat: target string is not 6 lower-case hex digits.
	// Outcome: reject the whole context/replace call.
	KindInvalidHashFormat Kind = "invalid_hash_format"
	// KindUnknownHash: hash absent from all registries. Outcome: skip that
	// target; if all targets are unknown, no-op notification, no mutation.
	KindUnknownHash Kind = "unknown_hash"
	// KindAlreadyPruned: target resolves to an already-pruned part. Not an
	// error outcome by itself, but callers that want to surface it as an
	// error (e.g. in tests) can use this kind.
	KindAlreadyPruned Kind = "already_pruned"
	// KindProtectedTool: target is a protected tool. Outcome: reject the
	// whole context call.
	KindProtectedTool Kind = "protected_tool"
	// KindMissingSummary: distill target has no summary. Outcome: reject
	// the whole context call.
	KindMissingSummary Kind = "missing_summary"
	// KindPatternNotFound: a replace operation's start/end markers have
	// zero occurrences in any text part.
	KindPatternNotFound Kind = "pattern_not_found"
	// KindPatternAmbiguous: a replace operation's start marker has more
	// than one occurrence in the same text part.
	KindPatternAmbiguous Kind = "pattern_ambiguous"
	// KindMatchTooShort: the matched region is under 30 characters.
	KindMatchTooShort Kind = "match_too_short"
	// KindMarkersTooShort: neither the start nor the end marker exceeds 15
	// characters.
	KindMarkersTooShort Kind = "markers_too_short"
	// KindPatternsOverlap: two matches in the same text part overlap.
	KindPatternsOverlap Kind = "patterns_overlap"
	// KindPersistenceError: save/load of session state failed. Outcome:
	// logged and swallowed; in-memory state remains authoritative.
	KindPersistenceError Kind = "persistence_error"
	// KindHostFetchError: the host's message fetch failed. Outcome:
	// surfaced to the caller; no state mutation.
	KindHostFetchError Kind = "host_fetch_error"
	// KindAlreadyForgotten: restore attempted on a call id that was pruned
	// with fullyForget=true. Outcome: reject (Open Question iii).
	KindAlreadyForgotten Kind = "already_forgotten"
	// KindInvalidArgument: a tool call's arguments failed schema
	// validation (component 4.L) before reaching dispatch.
	KindInvalidArgument Kind = "invalid_argument"
)

// ToolError represents a structured failure that preserves message and
// causal context while still implementing the standard error interface.
// ToolErrors may be nested via Cause to retain diagnostics across retries.
type ToolError struct {
	// Kind classifies which §7 outcome this error represents.
	Kind Kind
	// Message is the human-readable summary of the failure.
	Message string
	// Cause links to the underlying tool error, enabling error chains with
	// errors.Is/As.
	Cause *ToolError
}

// New constructs a ToolError of the given kind with the provided message.
func New(kind Kind, message string) *ToolError {
	if message == "" {
		message = string(kind)
	}
	return &ToolError{Kind: kind, Message: message}
}

// NewWithCause constructs a ToolError that wraps an underlying error. The
// cause is converted into a ToolError chain so error metadata survives
// serialization while still supporting errors.Is/As through Unwrap.
func NewWithCause(kind Kind, message string, cause error) *ToolError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ToolError{
		Kind:    kind,
		Message: message,
		Cause:   FromError(cause),
	}
}

// FromError converts an arbitrary error into a ToolError chain, preserving
// an existing ToolError (and its Kind) if the error chain already contains
// one.
func FromError(err error) *ToolError {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{
		Message: err.Error(),
		Cause:   FromError(errors.Unwrap(err)),
	}
}

// Errorf formats according to a format specifier and returns it as a
// ToolError of the given kind.
func Errorf(kind Kind, format string, args ...any) *ToolError {
	return New(kind, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the underlying tool error to support errors.Is/As.
func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is a *ToolError with the same Kind, so callers
// can write errors.Is(err, toolerrors.New(toolerrors.KindProtectedTool, "")).
func (e *ToolError) Is(target error) bool {
	t, ok := target.(*ToolError)
	if !ok || e == nil {
		return false
	}
	return e.Kind != "" && e.Kind == t.Kind
}
