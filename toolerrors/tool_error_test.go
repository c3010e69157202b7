package toolerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByKind(t *testing.T) {
	err := New(KindProtectedTool, "tool 'write' is protected")
	sentinel := New(KindProtectedTool, "")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is to match on Kind")
	}
	other := New(KindUnknownHash, "")
	if errors.Is(err, other) {
		t.Fatalf("did not expect errors.Is to match a different Kind")
	}
}

func TestNewWithCauseChain(t *testing.T) {
	base := errors.New("disk full")
	wrapped := NewWithCause(KindPersistenceError, "save failed", base)
	if wrapped.Cause == nil || wrapped.Cause.Message != "disk full" {
		t.Fatalf("expected cause chain to preserve message, got %+v", wrapped.Cause)
	}
	if wrapped.Unwrap().Error() != "disk full" {
		t.Fatalf("Unwrap() = %v, want disk full", wrapped.Unwrap())
	}
}

func TestErrorfFormats(t *testing.T) {
	err := Errorf(KindMatchTooShort, "match is %d chars, need 30", 29)
	if err.Error() != "match is 29 chars, need 30" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestFromErrorPreservesExistingToolError(t *testing.T) {
	original := New(KindAlreadyForgotten, "cannot restore")
	wrapped := fmt.Errorf("context: %w", original)
	got := FromError(wrapped)
	if got.Kind != KindAlreadyForgotten {
		t.Fatalf("expected FromError to preserve Kind, got %q", got.Kind)
	}
}
