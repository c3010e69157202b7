package session

import "testing"

func TestRegisterToolRecordEvictsFIFO(t *testing.T) {
	s := New("sess1")
	s.MaxToolCacheSize = 2
	s.RegisterToolRecord("c1", "read", nil, "completed", "", 1)
	s.RegisterToolRecord("c2", "read", nil, "completed", "", 2)
	evicted := s.RegisterToolRecord("c3", "read", nil, "completed", "", 3)
	if len(evicted) != 1 || evicted[0] != "c1" {
		t.Fatalf("expected c1 evicted first (FIFO), got %v", evicted)
	}
	if len(s.ToolParameters) != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", len(s.ToolParameters))
	}
}

func TestRegisterCallHashEvictionRemovesHashEntries(t *testing.T) {
	s := New("sess1")
	s.MaxToolCacheSize = 1
	s.RegisterToolRecord("c1", "read", nil, "completed", "", 1)
	s.RegisterCallHash("c1", "aaaaaa")
	s.RegisterToolRecord("c2", "read", nil, "completed", "", 2) // evicts c1

	if _, ok := s.CallIDForHash("aaaaaa"); ok {
		t.Fatalf("expected hash entry removed when its call id is evicted")
	}
	if _, ok := s.HashForCall("c1"); ok {
		t.Fatalf("expected reverse hash entry removed too")
	}
}

func TestHashRegistrySymmetry(t *testing.T) {
	s := New("sess1")
	final := s.RegisterCallHash("c1", "abc123")
	if final != "abc123" {
		t.Fatalf("expected no collision, got %q", final)
	}
	id, ok := s.CallIDForHash(final)
	if !ok || id != "c1" {
		t.Fatalf("expected symmetric lookup, got %q, %v", id, ok)
	}
	h, ok := s.HashForCall("c1")
	if !ok || h != final {
		t.Fatalf("expected symmetric lookup, got %q, %v", h, ok)
	}
}

func TestPrunePlanAddRemoveIdempotent(t *testing.T) {
	p := &PrunePlan{stale: true}
	if !p.AddTool("c1") {
		t.Fatalf("expected first add to succeed")
	}
	if p.AddTool("c1") {
		t.Fatalf("expected duplicate add to be a no-op")
	}
	if !p.IsToolPruned("c1") {
		t.Fatalf("expected c1 to be pruned")
	}
	if !p.RemoveTool("c1") {
		t.Fatalf("expected remove to succeed")
	}
	if p.IsToolPruned("c1") {
		t.Fatalf("expected c1 no longer pruned after restore")
	}
}

func TestDiscardThenRestoreReturnsToPriorContents(t *testing.T) {
	p := &PrunePlan{stale: true}
	p.AddTool("c1")
	before := append([]string(nil), p.ToolIDs...)
	p.AddTool("c2")
	p.RemoveTool("c2")
	if len(p.ToolIDs) != len(before) {
		t.Fatalf("expected prune list to return to prior contents, got %v want %v", p.ToolIDs, before)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	s := New("sess1")
	s.CurrentTurn = 4
	s.RegisterToolRecord("c1", "read", map[string]any{"path": "/a"}, "completed", "", 1)
	s.RegisterCallHash("c1", "abc123")
	s.Prune.AddTool("c2")
	s.Cursors.Files["/a"] = map[string]bool{"c1": true}
	s.Todos = []Todo{{ID: "t1", Content: "write tests", Status: TodoInProgress}}

	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	restored, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if restored.SessionID != "sess1" || restored.CurrentTurn != 4 {
		t.Fatalf("unexpected restored state: %+v", restored)
	}
	if h, ok := restored.HashForCall("c1"); !ok || h != "abc123" {
		t.Fatalf("expected hash registry to round-trip, got %q, %v", h, ok)
	}
	if !restored.Prune.IsToolPruned("c2") {
		t.Fatalf("expected prune plan to round-trip")
	}
	if !restored.Cursors.Files["/a"]["c1"] {
		t.Fatalf("expected cursors.files to round-trip")
	}
	if len(restored.Todos) != 1 || restored.Todos[0].ID != "t1" {
		t.Fatalf("expected todos to round-trip, got %+v", restored.Todos)
	}
}
