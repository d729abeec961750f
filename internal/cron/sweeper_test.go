package cron

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/basket/tasktrack/internal/dialog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSweeper_RejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper(Config{
		States:   dialog.NewStateStore(),
		Logger:   discardLogger(),
		Schedule: "not a cron expr",
		TTL:      time.Hour,
	})
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestNewSweeper_DefaultSchedule(t *testing.T) {
	s, err := NewSweeper(Config{
		States: dialog.NewStateStore(),
		Logger: discardLogger(),
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	// Every five minutes: from an exact hour the next activation is :05.
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next := s.schedule.Next(from)
	if want := from.Add(5 * time.Minute); !next.Equal(want) {
		t.Fatalf("next activation %v, want %v", next, want)
	}
}

func TestSweeper_DisabledWithZeroTTL(t *testing.T) {
	s, err := NewSweeper(Config{
		States: dialog.NewStateStore(),
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	// Start must not have launched a loop; Stop returns immediately.
	s.Stop()
}

func TestSweeper_SweepDropsStaleState(t *testing.T) {
	states := dialog.NewStateStore()
	states.SetStep(1, dialog.StepAwaitingTitle, nil)

	s, err := NewSweeper(Config{
		States: states,
		Logger: discardLogger(),
		TTL:    time.Nanosecond,
	})
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	time.Sleep(time.Millisecond)
	s.sweep()
	if states.Len() != 0 {
		t.Fatalf("expected stale state swept, %d remain", states.Len())
	}
}
