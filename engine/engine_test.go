package engine

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/adapter"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/config"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hooks"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/manual"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// jsonPayload round-trips v through encoding/json so tests hand DispatchContext
// the same map[string]interface{}/[]interface{} shape a tool-registration
// hook actually produces from a raw call payload.
func jsonPayload(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return out
}

type fakeStore struct {
	saved map[string]*session.State
}

func newFakeStore() *fakeStore { return &fakeStore{saved: make(map[string]*session.State)} }

func (f *fakeStore) Save(ctx context.Context, s *session.State) error {
	f.saved[s.SessionID] = s
	return nil
}

func (f *fakeStore) Load(ctx context.Context, sessionID string) (*session.State, error) {
	return f.saved[sessionID], nil
}

func seededHost(t *testing.T) *adapter.MemoryHost {
	t.Helper()
	host := adapter.NewMemoryHost()
	host.Seed("s1", []parts.Message{
		{ID: "m1", Role: parts.RoleUser, Parts: []parts.Part{parts.Text{Content: "list the repo"}}},
		{ID: "m2", Role: parts.RoleAssistant, Parts: []parts.Part{
			parts.StepStart{},
			parts.Tool{CallID: "call_1", Name: "bash", Input: map[string]any{"command": "ls"}, Status: parts.StatusCompleted, Output: "a.go\nb.go"},
		}},
	})
	return host
}

func TestAfterToolSkipsPipelineForManualTools(t *testing.T) {
	host := seededHost(t)
	e := New(config.Default(), newFakeStore(), host)

	if err := e.AfterTool(context.Background(), "s1", ToolContext); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No state should have been created for s1 since the pipeline never ran.
	e.mu.Lock()
	_, ok := e.sessions["s1"]
	e.mu.Unlock()
	if ok {
		t.Fatalf("expected no session state cached for a manual-tool AfterTool call")
	}
}

func TestAfterToolRunsSyncAndRegistersHash(t *testing.T) {
	host := seededHost(t)
	e := New(config.Default(), newFakeStore(), host)

	if err := e.AfterTool(context.Background(), "s1", "bash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.mu.Lock()
	st := e.sessions["s1"]
	e.mu.Unlock()
	if st == nil {
		t.Fatalf("expected session state cached after AfterTool")
	}
	if !st.HasToolRecord("call_1") {
		t.Fatalf("expected sync to register call_1")
	}
	if _, ok := st.HashForCall("call_1"); !ok {
		t.Fatalf("expected sync to register a hash for call_1")
	}
}

func TestAfterTurnPersistsState(t *testing.T) {
	host := seededHost(t)
	store := newFakeStore()
	e := New(config.Default(), store, host)

	if err := e.AfterTurn(context.Background(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.saved["s1"]; !ok {
		t.Fatalf("expected AfterTurn to persist session state")
	}
}

func TestDispatchContextNoopStillNotifies(t *testing.T) {
	host := seededHost(t)
	e := New(config.Default(), newFakeStore(), host)

	result, err := e.DispatchContext(context.Background(), "s1",
		jsonPayload(t, map[string]any{"action": "discard", "targets": [][]string{{"abc123"}}}),
		manual.ActionDiscard, []manual.TargetSpec{{Target: "abc123"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Noop() {
		t.Fatalf("expected no-op result for an unknown hash, got %+v", result)
	}
	if len(result.Attempted) != 1 || result.Attempted[0] != "abc123" {
		t.Fatalf("expected the attempted identifier to survive the no-op, got %+v", result.Attempted)
	}
	msgs, _ := host.Messages(context.Background(), "s1")
	if len(msgs) != 3 {
		t.Fatalf("expected the no-op notification to be delivered as a prompt message, got %d messages", len(msgs))
	}
	last := msgs[len(msgs)-1]
	text, ok := last.Parts[0].(parts.Text)
	if !ok || !strings.Contains(text.Content, "abc123") {
		t.Fatalf("expected the no-op notification text to list the attempted identifier, got %+v", last)
	}
}

func TestDispatchContextRejectsInvalidPayload(t *testing.T) {
	host := seededHost(t)
	e := New(config.Default(), newFakeStore(), host)

	_, err := e.DispatchContext(context.Background(), "s1",
		jsonPayload(t, map[string]any{"action": "bogus", "targets": [][]string{{"abc123"}}}),
		manual.Action("bogus"), nil)
	if err == nil {
		t.Fatalf("expected schema validation to reject an unknown action")
	}
}

func TestViewReflectsAppliedDiscards(t *testing.T) {
	host := seededHost(t)
	e := New(config.Default(), newFakeStore(), host)

	if err := e.AfterTool(context.Background(), "s1", "bash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.mu.Lock()
	st := e.sessions["s1"]
	hash, _ := st.HashForCall("call_1")
	e.mu.Unlock()

	_, err := e.DispatchContext(context.Background(), "s1",
		jsonPayload(t, map[string]any{"action": "discard", "targets": [][]string{{hash}}}),
		manual.ActionDiscard, []manual.TargetSpec{{Target: hash}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := e.View(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tool parts.Tool
	found := false
	for _, msg := range view {
		for _, p := range msg.Parts {
			if tp, ok := p.(parts.Tool); ok && tp.CallID == "call_1" {
				tool, found = tp, true
			}
		}
	}
	if !found {
		t.Fatalf("expected call_1 tool part to survive in the view")
	}
	if tool.Input != nil {
		t.Fatalf("expected discarded tool's input to be cleared, got %v", tool.Input)
	}
}

func TestSessionEndClearsCache(t *testing.T) {
	host := seededHost(t)
	e := New(config.Default(), newFakeStore(), host)
	if err := e.AfterTool(context.Background(), "s1", "bash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.SessionEnd(context.Background(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.mu.Lock()
	_, ok := e.sessions["s1"]
	e.mu.Unlock()
	if ok {
		t.Fatalf("expected SessionEnd to evict cached session state")
	}
}

func TestRegisterToolsIncludesReplaceOnlyWhenEnabled(t *testing.T) {
	e := New(config.Default(), newFakeStore(), seededHost(t))
	if got := e.RegisterTools(false); len(got) != 1 || got[0].Name != ToolContext {
		t.Fatalf("expected only context tool, got %+v", got)
	}
	if got := e.RegisterTools(true); len(got) != 2 {
		t.Fatalf("expected context and replace tools, got %+v", got)
	}
}

func TestBusPublishErrorPropagatesFromAfterTool(t *testing.T) {
	host := seededHost(t)
	bus := hooks.NewBus()
	if _, err := bus.Register(hooks.SubscriberFunc(func(ctx context.Context, event hooks.Event) error {
		return errBusSubscriber
	})); err != nil {
		t.Fatalf("unexpected error registering subscriber: %v", err)
	}
	e := New(config.Default(), newFakeStore(), host, WithBus(bus))

	if err := e.AfterTool(context.Background(), "s1", "bash"); err != errBusSubscriber {
		t.Fatalf("expected bus subscriber error to propagate, got %v", err)
	}
}

type busSubscriberError struct{}

func (busSubscriberError) Error() string { return "subscriber failed" }

var errBusSubscriber = busSubscriberError{}
