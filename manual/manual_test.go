package manual

import (
	"errors"
	"testing"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/toolerrors"
)

func newState() *session.State {
	s := session.New("s1")
	s.CurrentTurn = 5
	return s
}

func registerTool(s *session.State, callID, tool string, input any, status string, turn int) string {
	s.RegisterToolRecord(callID, tool, input, status, "", turn)
	return s.RegisterCallHash(callID, hashing.ToolHash(tool, input))
}

func TestDiscardToolAppendsToPruneAndHistory(t *testing.T) {
	s := newState()
	hash := registerTool(s, "c1", "read", map[string]any{"filePath": "a.go"}, "completed", 1)

	res, err := Dispatch(s, Config{}, ActionDiscard, []TargetSpec{{Target: hash}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("expected 1 applied target, got %d", len(res.Applied))
	}
	if !s.Prune.IsToolPruned("c1") {
		t.Fatalf("expected c1 pruned")
	}
	if len(s.DiscardHistory) != 1 {
		t.Fatalf("expected a discard history entry")
	}
	if s.Stats.ManualDiscard.Tool.Count != 1 {
		t.Fatalf("expected manualDiscard.tool count 1, got %d", s.Stats.ManualDiscard.Tool.Count)
	}
}

func TestDiscardProtectedToolRejectsWholeCall(t *testing.T) {
	s := newState()
	hash := registerTool(s, "c1", "write", map[string]any{"filePath": "a.go"}, "completed", 1)

	_, err := Dispatch(s, Config{ProtectedTools: map[string]bool{"write": true}}, ActionDiscard, []TargetSpec{{Target: hash}})
	if err == nil {
		t.Fatalf("expected protected-tool rejection")
	}
	var te *toolerrors.ToolError
	if !errors.As(err, &te) || te.Kind != toolerrors.KindProtectedTool {
		t.Fatalf("expected KindProtectedTool, got %v", err)
	}
	if s.Prune.IsToolPruned("c1") {
		t.Fatalf("must not mutate state when the call is rejected")
	}
}

func TestDiscardUnknownHashSkipsAndNoops(t *testing.T) {
	s := newState()

	res, err := Dispatch(s, Config{}, ActionDiscard, []TargetSpec{{Target: "abc123"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Noop() {
		t.Fatalf("expected no-op result")
	}
	if len(res.Attempted) != 1 {
		t.Fatalf("expected attempted identifiers recorded for the no-op notification")
	}
}

func TestDistillRequiresSummary(t *testing.T) {
	s := newState()
	hash := registerTool(s, "c1", "read", map[string]any{"filePath": "a.go"}, "completed", 1)

	_, err := Dispatch(s, Config{}, ActionDistill, []TargetSpec{{Target: hash}})
	if err == nil {
		t.Fatalf("expected missing-summary rejection")
	}
	var te *toolerrors.ToolError
	if !errors.As(err, &te) || te.Kind != toolerrors.KindMissingSummary {
		t.Fatalf("expected KindMissingSummary, got %v", err)
	}
}

func TestDistillStoresSummaryAndCreditsDistillationStat(t *testing.T) {
	s := newState()
	hash := registerTool(s, "c1", "read", map[string]any{"filePath": "a.go"}, "completed", 1)

	_, err := Dispatch(s, Config{}, ActionDistill, []TargetSpec{{Target: hash, Summary: "read a.go to check imports"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Distilled["c1"] != "read a.go to check imports" {
		t.Fatalf("expected summary stored under Distilled")
	}
	if s.Stats.Distillation.Count != 1 {
		t.Fatalf("expected distillation stat credited")
	}
	if s.Stats.ManualDiscard.Tool.Count != 0 {
		t.Fatalf("distill must not also credit manualDiscard.tool")
	}
}

func TestRestoreReversesDiscard(t *testing.T) {
	s := newState()
	hash := registerTool(s, "c1", "read", map[string]any{"filePath": "a.go"}, "completed", 1)
	if _, err := Dispatch(s, Config{}, ActionDiscard, []TargetSpec{{Target: hash}}); err != nil {
		t.Fatalf("setup discard failed: %v", err)
	}

	res, err := Dispatch(s, Config{}, ActionRestore, []TargetSpec{{Target: hash}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("expected restore applied")
	}
	if s.Prune.IsToolPruned("c1") {
		t.Fatalf("expected c1 no longer pruned")
	}
}

func TestRestoreOnForgottenRejectsWholeCall(t *testing.T) {
	s := newState()
	hash := registerTool(s, "c1", "read", map[string]any{"filePath": "a.go"}, "completed", 1)
	if _, err := Dispatch(s, Config{FullyForget: true}, ActionDiscard, []TargetSpec{{Target: hash}}); err != nil {
		t.Fatalf("setup discard failed: %v", err)
	}

	_, err := Dispatch(s, Config{}, ActionRestore, []TargetSpec{{Target: hash}})
	if err == nil {
		t.Fatalf("expected already-forgotten rejection")
	}
	var te *toolerrors.ToolError
	if !errors.As(err, &te) || te.Kind != toolerrors.KindAlreadyForgotten {
		t.Fatalf("expected KindAlreadyForgotten, got %v", err)
	}
}

func TestRestoreUnknownOrUnprunedIsSilentNoop(t *testing.T) {
	s := newState()
	hash := registerTool(s, "c1", "read", map[string]any{"filePath": "a.go"}, "completed", 1)

	res, err := Dispatch(s, Config{}, ActionRestore, []TargetSpec{{Target: hash}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Noop() {
		t.Fatalf("expected no-op for restoring a never-discarded call")
	}
}

func TestBulkToolsExpandsToEveryUnprotectedUnprunedCall(t *testing.T) {
	s := newState()
	registerTool(s, "c1", "read", map[string]any{"filePath": "a.go"}, "completed", 1)
	registerTool(s, "c2", "write", map[string]any{"filePath": "b.go"}, "completed", 2)

	res, err := Dispatch(s, Config{ProtectedTools: map[string]bool{"write": true}}, ActionDiscard, []TargetSpec{{Target: BulkTools}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("expected only the unprotected call discarded, got %d", len(res.Applied))
	}
	if !s.Prune.IsToolPruned("c1") || s.Prune.IsToolPruned("c2") {
		t.Fatalf("expected c1 pruned and protected c2 left alone")
	}
}

func TestBulkDistillRequiresSummaryUpFront(t *testing.T) {
	s := newState()
	registerTool(s, "c1", "read", map[string]any{"filePath": "a.go"}, "completed", 1)

	_, err := Dispatch(s, Config{}, ActionDistill, []TargetSpec{{Target: BulkTools}})
	if err == nil {
		t.Fatalf("expected missing-summary rejection for bulk distill")
	}
}

func TestDiscardMessageAndReasoningUseTokenHeuristics(t *testing.T) {
	s := newState()
	msgHash, err := s.RegisterMessageHash("m1:0")
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	reasonHash, err := s.RegisterReasoningHash("m1:1")
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := Dispatch(s, Config{}, ActionDiscard, []TargetSpec{{Target: msgHash}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Dispatch(s, Config{}, ActionDiscard, []TargetSpec{{Target: reasonHash}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Stats.ManualDiscard.Message.TokensSaved != 500 {
		t.Fatalf("expected default 500-token heuristic for message, got %d", s.Stats.ManualDiscard.Message.TokensSaved)
	}
	if s.Stats.ManualDiscard.Thinking.TokensSaved != 2000 {
		t.Fatalf("expected default 2000-token heuristic for reasoning, got %d", s.Stats.ManualDiscard.Thinking.TokensSaved)
	}
}

func TestDistillOnReasoningAliasesDiscardButCreditsDistillationStat(t *testing.T) {
	s := newState()
	hash, err := s.RegisterReasoningHash("m1:2")
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := Dispatch(s, Config{}, ActionDistill, []TargetSpec{{Target: hash, Summary: "thought about approach"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Prune.IsReasoningPruned("m1:2") {
		t.Fatalf("expected reasoning part pruned")
	}
	if s.Stats.Distillation.Count != 1 {
		t.Fatalf("expected distillation stat credited for reasoning distill")
	}
	if s.Stats.ManualDiscard.Thinking.Count != 0 {
		t.Fatalf("reasoning distill must not also credit manualDiscard.thinking")
	}
}
