package replace

import (
	"errors"
	"strings"
	"testing"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/toolerrors"
)

func textMessage(id, content string) parts.Message {
	return parts.Message{ID: id, Role: parts.RoleAssistant, Parts: []parts.Part{parts.Text{Content: content}}}
}

func TestApplySucceedsOnUniqueSpecificMatch(t *testing.T) {
	s := session.New("s1")
	body := "BEGIN_MARKER_LONG some filler content that is long enough to pass the length check END_MARKER tail"
	msgs := []parts.Message{textMessage("m1", body)}

	err := Apply(s, msgs, []Operation{{Start: "BEGIN_MARKER_LONG", End: "END_MARKER", Replacement: "[elided]"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Prune.Replacements) != 1 {
		t.Fatalf("expected one replacement entry, got %d", len(s.Prune.Replacements))
	}
	entry := s.Prune.Replacements[0]
	if entry.MessageID != "m1" || entry.PartIndex != 0 {
		t.Fatalf("unexpected entry location: %+v", entry)
	}
	want := body[entry.StartIndex:entry.EndIndex]
	if !strings.HasPrefix(want, "BEGIN_MARKER_LONG") || !strings.HasSuffix(want, "END_MARKER") {
		t.Fatalf("expected match to span both markers, got %q", want)
	}
}

func TestApplyRejectsZeroOccurrences(t *testing.T) {
	s := session.New("s1")
	msgs := []parts.Message{textMessage("m1", "nothing relevant here")}

	err := Apply(s, msgs, []Operation{{Start: "BEGIN_MARKER", End: "END_MARKER", Replacement: "x"}})
	assertKind(t, err, toolerrors.KindPatternNotFound)
	if len(s.Prune.Replacements) != 0 {
		t.Fatalf("expected no mutation on validation failure")
	}
}

func TestApplyRejectsAmbiguousMultipleOccurrences(t *testing.T) {
	s := session.New("s1")
	body := "BEGIN_MARKER_LONG aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa END_MARKER " +
		"BEGIN_MARKER_LONG bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb END_MARKER"
	msgs := []parts.Message{textMessage("m1", body)}

	err := Apply(s, msgs, []Operation{{Start: "BEGIN_MARKER_LONG", End: "END_MARKER", Replacement: "x"}})
	assertKind(t, err, toolerrors.KindPatternAmbiguous)
}

func TestApplyRejectsMatchTooShort(t *testing.T) {
	s := session.New("s1")
	body := "BEGIN_MARKER_LONG tiny END"
	msgs := []parts.Message{textMessage("m1", body)}

	err := Apply(s, msgs, []Operation{{Start: "BEGIN_MARKER_LONG", End: "END", Replacement: "x"}})
	assertKind(t, err, toolerrors.KindMatchTooShort)
}

func TestApplyRejectsMarkersTooShort(t *testing.T) {
	s := session.New("s1")
	body := "AB this is a sufficiently long filler region of text CD tail"
	msgs := []parts.Message{textMessage("m1", body)}

	err := Apply(s, msgs, []Operation{{Start: "AB", End: "CD", Replacement: "x"}})
	assertKind(t, err, toolerrors.KindMarkersTooShort)
}

func TestApplyRejectsOverlappingOperations(t *testing.T) {
	s := session.New("s1")
	body := "BEGIN_MARKER_ONE filler content long enough to pass the check MIDDLE_SHARED_MARKER " +
		"filler more content long enough too END_MARKER_TWO"
	msgs := []parts.Message{textMessage("m1", body)}

	ops := []Operation{
		{Start: "BEGIN_MARKER_ONE", End: "MIDDLE_SHARED_MARKER", Replacement: "x"},
		{Start: "MIDDLE_SHARED_MARKER", End: "END_MARKER_TWO", Replacement: "y"},
	}
	err := Apply(s, msgs, ops)
	assertKind(t, err, toolerrors.KindPatternsOverlap)
}

func TestApplyCombinesFailuresAcrossOperations(t *testing.T) {
	s := session.New("s1")
	msgs := []parts.Message{textMessage("m1", "nothing relevant here")}

	ops := []Operation{
		{Start: "MISSING_ONE", End: "END_ONE", Replacement: "x"},
		{Start: "MISSING_TWO", End: "END_TWO", Replacement: "y"},
	}
	err := Apply(s, msgs, ops)
	var batch *BatchError
	if !errors.As(err, &batch) {
		t.Fatalf("expected a *BatchError, got %v", err)
	}
	if len(batch.Errors) != 2 {
		t.Fatalf("expected both operation failures collected, got %d", len(batch.Errors))
	}
}

func assertKind(t *testing.T, err error, kind toolerrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error of kind %s, got nil", kind)
	}
	var batch *BatchError
	if !errors.As(err, &batch) || len(batch.Errors) == 0 {
		t.Fatalf("expected a *BatchError, got %v", err)
	}
	for _, e := range batch.Errors {
		if e.Kind == kind {
			return
		}
	}
	t.Fatalf("expected an error of kind %s, got %v", kind, err)
}
