package dialog

import (
	"testing"
	"time"
)

func TestStateStore_GetReturnsClone(t *testing.T) {
	s := NewStateStore()
	s.SetStep(1, StepAwaitingDescription, map[string]string{"title": "original"})

	state, ok := s.Get(1)
	if !ok {
		t.Fatal("expected state")
	}
	state.Fields["title"] = "mutated"

	again, _ := s.Get(1)
	if again.Fields["title"] != "original" {
		t.Fatalf("stored fields mutated through the returned copy: %+v", again.Fields)
	}
}

func TestStateStore_SetStepOverwrites(t *testing.T) {
	s := NewStateStore()
	s.SetStep(1, StepAwaitingDescription, map[string]string{"title": "old flow"})
	s.SetStep(1, StepAwaitingTitle, nil)

	state, ok := s.Get(1)
	if !ok || state.Step != StepAwaitingTitle {
		t.Fatalf("expected StepAwaitingTitle, got %+v", state)
	}
	if state.Fields["title"] != "" {
		t.Fatalf("old flow's fields survived: %+v", state.Fields)
	}
}

func TestStateStore_MergeFields(t *testing.T) {
	s := NewStateStore()

	// No-op without an active dialogue.
	s.MergeFields(1, map[string]string{"title": "ghost"})
	if _, ok := s.Get(1); ok {
		t.Fatal("merge must not create state")
	}

	s.SetStep(1, StepAwaitingTitle, map[string]string{"a": "1"})
	s.MergeFields(1, map[string]string{"b": "2"})

	state, _ := s.Get(1)
	if state.Fields["a"] != "1" || state.Fields["b"] != "2" {
		t.Fatalf("merge lost fields: %+v", state.Fields)
	}
	if state.Step != StepAwaitingTitle {
		t.Fatalf("merge changed the step: %v", state.Step)
	}
}

func TestStateStore_ClearAndLen(t *testing.T) {
	s := NewStateStore()
	s.SetStep(1, StepAwaitingTitle, nil)
	s.SetStep(2, StepAwaitingTitle, nil)
	if s.Len() != 2 {
		t.Fatalf("expected 2 active dialogues, got %d", s.Len())
	}

	s.Clear(1)
	if s.Len() != 1 {
		t.Fatalf("expected 1 after clear, got %d", s.Len())
	}
	if _, ok := s.Get(1); ok {
		t.Fatal("cleared state still readable")
	}

	// Clearing an absent user is a no-op.
	s.Clear(99)
	if s.Len() != 1 {
		t.Fatalf("expected 1, got %d", s.Len())
	}
}

func TestStateStore_SweepIdle(t *testing.T) {
	s := NewStateStore()
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.SetStep(1, StepAwaitingTitle, nil)

	current = current.Add(30 * time.Minute)
	s.SetStep(2, StepAwaitingTitle, nil)

	current = current.Add(45 * time.Minute)
	if dropped := s.SweepIdle(time.Hour); dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", dropped)
	}
	if _, ok := s.Get(1); ok {
		t.Fatal("stale dialogue survived the sweep")
	}
	if _, ok := s.Get(2); !ok {
		t.Fatal("fresh dialogue was swept")
	}
}

func TestStateStore_SweepIdleRefreshedByActivity(t *testing.T) {
	s := NewStateStore()
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.SetStep(1, StepAwaitingTitle, nil)

	// Advancing the flow resets the idle clock.
	current = current.Add(50 * time.Minute)
	s.MergeFields(1, map[string]string{"title": "kept alive"})

	current = current.Add(30 * time.Minute)
	if dropped := s.SweepIdle(time.Hour); dropped != 0 {
		t.Fatalf("active dialogue swept: dropped=%d", dropped)
	}
}

func TestParseTaskID(t *testing.T) {
	tests := []struct {
		payload string
		want    int64
		ok      bool
	}{
		{"complete_42", 42, true},
		{"complete_1", 1, true},
		{"complete_0", 0, false},
		{"complete_-5", 0, false},
		{"complete_abc", 0, false},
		{"complete_", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseTaskID(tt.payload, "complete_")
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseTaskID(%q) = (%d, %v), want (%d, %v)", tt.payload, got, ok, tt.want, tt.ok)
		}
	}
}
