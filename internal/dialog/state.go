package dialog

import (
	"maps"
	"sync"
	"time"
)

// Step names a position in a multi-step dialogue.
type Step int

const (
	StepIdle Step = iota
	StepAwaitingTitle
	StepAwaitingDescription
)

func (s Step) String() string {
	switch s {
	case StepAwaitingTitle:
		return "awaiting_title"
	case StepAwaitingDescription:
		return "awaiting_description"
	default:
		return "idle"
	}
}

// State is one user's active dialogue position plus the fields accumulated
// so far. The zero value means idle.
type State struct {
	Step   Step
	Fields map[string]string
}

type stateRecord struct {
	state     State
	updatedAt time.Time
}

// StateStore holds at most one in-flight dialogue per user, in memory only.
// Conversation state is deliberately not durable: a restart drops all
// half-finished flows and users simply start over.
type StateStore struct {
	mu     sync.Mutex
	states map[int64]*stateRecord
	now    func() time.Time // overridable in tests
}

func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[int64]*stateRecord),
		now:    time.Now,
	}
}

// Get returns the user's state. ok is false when the user has no active
// dialogue.
func (s *StateStore) Get(userID int64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.states[userID]
	if !ok {
		return State{}, false
	}
	out := State{Step: rec.state.Step, Fields: maps.Clone(rec.state.Fields)}
	return out, true
}

// SetStep replaces the user's dialogue state unconditionally. Starting a new
// flow while another is in progress silently discards the old one; that is
// the intended single-slot semantics, not an accident.
func (s *StateStore) SetStep(userID int64, step Step, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = &stateRecord{
		state:     State{Step: step, Fields: maps.Clone(fields)},
		updatedAt: s.now(),
	}
}

// MergeFields adds fields to the user's current state without changing the
// step. No-op when the user has no active dialogue.
func (s *StateStore) MergeFields(userID int64, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.states[userID]
	if !ok {
		return
	}
	if rec.state.Fields == nil {
		rec.state.Fields = make(map[string]string, len(fields))
	}
	maps.Copy(rec.state.Fields, fields)
	rec.updatedAt = s.now()
}

// Clear removes the user's dialogue state.
func (s *StateStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}

// Len reports how many users currently have an active dialogue.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// SweepIdle clears dialogues that have not advanced within ttl and returns
// how many were dropped. The core never calls this; the cron sweeper does.
func (s *StateStore) SweepIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-ttl)
	dropped := 0
	for userID, rec := range s.states {
		if rec.updatedAt.Before(cutoff) {
			delete(s.states, userID)
			dropped++
		}
	}
	return dropped
}
