package reminder

import (
	"strings"
	"testing"
)

func TestSnapshotEnforcesMaxPerRun(t *testing.T) {
	e := NewEngine()
	e.AddReminder("s1", Reminder{ID: "r1", Text: "hi", Priority: TierGuidance, MaxPerRun: 1})
	if got := e.Snapshot("s1", 1); len(got) != 1 {
		t.Fatalf("expected first snapshot to emit, got %v", got)
	}
	if got := e.Snapshot("s1", 2); len(got) != 0 {
		t.Fatalf("expected second snapshot to be suppressed by MaxPerRun, got %v", got)
	}
}

func TestSnapshotEnforcesMinTurnsBetween(t *testing.T) {
	e := NewEngine()
	e.AddReminder("s1", Reminder{ID: "r1", Text: "hi", Priority: TierGuidance, MinTurnsBetween: 3})
	e.Snapshot("s1", 1)
	if got := e.Snapshot("s1", 2); len(got) != 0 {
		t.Fatalf("expected spacing to suppress emission at turn 2, got %v", got)
	}
	if got := e.Snapshot("s1", 4); len(got) != 1 {
		t.Fatalf("expected emission to resume once spacing elapses, got %v", got)
	}
}

func TestSnapshotOrdersBySafetyFirst(t *testing.T) {
	e := NewEngine()
	e.AddReminder("s1", Reminder{ID: "zz", Text: "guidance", Priority: TierGuidance})
	e.AddReminder("s1", Reminder{ID: "aa", Text: "safety", Priority: TierSafety})
	got := e.Snapshot("s1", 1)
	if len(got) != 2 || got[0].Priority != TierSafety {
		t.Fatalf("expected safety tier first, got %+v", got)
	}
}

func TestSyncStuckTaskRemindersFiresAndSurfacesElapsedTurns(t *testing.T) {
	e := NewEngine()
	since := 5
	todos := []StuckTaskInput{{ID: "T1", Content: "refactor parser", InProgress: true, InProgressSince: &since}}

	// Before the threshold: no reminder.
	e.SyncStuckTaskReminders("s1", todos, 14, 12, 0)
	if got := e.Snapshot("s1", 14); len(got) != 0 {
		t.Fatalf("expected no reminder before threshold, got %v", got)
	}

	// At turn 20 (elapsed 15 >= stuckTaskTurns 12): reminder fires and
	// mentions "15 turns" (§8 scenario 7).
	e.SyncStuckTaskReminders("s1", todos, 20, 12, 0)
	got := e.Snapshot("s1", 20)
	if len(got) != 1 {
		t.Fatalf("expected one stuck-task reminder, got %v", got)
	}
	if want := "15 turns"; !strings.Contains(got[0].Text, want) {
		t.Fatalf("expected reminder text to mention %q, got %q", want, got[0].Text)
	}

	// Once the item completes, its reminder is removed.
	e.SyncStuckTaskReminders("s1", nil, 21, 12, 0)
	if got := e.Snapshot("s1", 21); len(got) != 0 {
		t.Fatalf("expected reminder cleared on completion, got %v", got)
	}
}
