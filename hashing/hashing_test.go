package hashing

import "testing"

func TestToolHashDeterministic(t *testing.T) {
	input := map[string]any{"b": 1, "a": 2, "c": nil}
	h1 := ToolHash("read", input)
	h2 := ToolHash("read", map[string]any{"a": 2, "b": 1})
	if h1 != h2 {
		t.Fatalf("expected dropping null keys and key order not to affect hash: %q != %q", h1, h2)
	}
	if len(h1) != 6 {
		t.Fatalf("expected 6-char hash, got %q", h1)
	}
}

func TestToolHashDiffersByInput(t *testing.T) {
	h1 := ToolHash("glob", map[string]any{"pattern": "*.ts"})
	h2 := ToolHash("glob", map[string]any{"pattern": "*.go"})
	if h1 == h2 {
		t.Fatalf("expected different inputs to hash differently")
	}
}

func TestCollisionResolutionSequence(t *testing.T) {
	taken := map[string]bool{"abc123": true}
	r := CollisionResolver{Taken: func(c string) bool { return taken[c] }}
	if got := r.Resolve("abc123"); got != "abc12_2" {
		t.Fatalf("first collision: got %q, want abc12_2", got)
	}
	taken["abc12_2"] = true
	if got := r.Resolve("abc123"); got != "abc12_3" {
		t.Fatalf("second collision: got %q, want abc12_3", got)
	}
}

func TestCollisionResolutionFreeHash(t *testing.T) {
	r := CollisionResolver{Taken: func(string) bool { return false }}
	if got := r.Resolve("abc123"); got != "abc123" {
		t.Fatalf("expected free hash unchanged, got %q", got)
	}
}

func TestTokenCounterMemoizesAndEvicts(t *testing.T) {
	tc := NewTokenCounter(nil, 2)
	a := tc.Count("aaaa")
	if got := tc.Count("aaaa"); got != a {
		t.Fatalf("expected memoized round-trip, got %d want %d", got, a)
	}
	tc.Count("bbbb")
	tc.Count("cccc") // evicts "aaaa" (least recently used)
	if tc.Len() != 2 {
		t.Fatalf("expected capacity-bounded cache, len=%d", tc.Len())
	}
}

func TestTokenCounterFallbackHeuristic(t *testing.T) {
	tc := NewTokenCounter(nil, 10)
	if got := tc.Count("12345678"); got != 2 {
		t.Fatalf("expected ceil(8/4)=2, got %d", got)
	}
	if got := tc.Count("123456789"); got != 3 {
		t.Fatalf("expected ceil(9/4)=3, got %d", got)
	}
}

type fakeLookup struct {
	tools, messages, reasoning map[string]bool
}

func (f fakeLookup) HasToolHash(h string) bool      { return f.tools[h] }
func (f fakeLookup) HasMessageHash(h string) bool    { return f.messages[h] }
func (f fakeLookup) HasReasoningHash(h string) bool  { return f.reasoning[h] }

func TestDetectTargetType(t *testing.T) {
	l := fakeLookup{
		tools:     map[string]bool{"aaaaaa": true},
		messages:  map[string]bool{"bbbbbb": true},
		reasoning: map[string]bool{"cccccc": true},
	}
	cases := map[string]TargetType{
		"aaaaaa": TargetTool,
		"bbbbbb": TargetMessage,
		"cccccc": TargetReasoning,
		"dddddd": TargetUnknown,
	}
	for in, want := range cases {
		if got := DetectTargetType(l, in); got != want {
			t.Fatalf("DetectTargetType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidHashFormat(t *testing.T) {
	valid := []string{"abc123", "000000", "ffffff"}
	invalid := []string{"ABC123", "abc12", "abc1234", "abc12g", ""}
	for _, v := range valid {
		if !IsValidHashFormat(v) {
			t.Fatalf("expected %q to be valid", v)
		}
	}
	for _, v := range invalid {
		if IsValidHashFormat(v) {
			t.Fatalf("expected %q to be invalid", v)
		}
	}
}
