// Package cron provides a periodic sweeper that evicts stale conversation
// state so abandoned guided flows do not pin memory forever.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/basket/tasktrack/internal/dialog"
)

// cronParser parses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
)

// Config holds the dependencies for the state sweeper.
type Config struct {
	States   *dialog.StateStore
	Logger   *slog.Logger
	Schedule string        // cron expression; defaults to every 5 minutes
	TTL      time.Duration // conversations idle longer than this are dropped
}

// Sweeper periodically drops conversation state that has been idle for
// longer than the configured TTL.
type Sweeper struct {
	states   *dialog.StateStore
	logger   *slog.Logger
	schedule cronlib.Schedule
	ttl      time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a new Sweeper with the given config. It returns an
// error if the cron expression does not parse.
func NewSweeper(cfg Config) (*Sweeper, error) {
	expr := cfg.Schedule
	if expr == "" {
		expr = "*/5 * * * *"
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", expr, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		states:   cfg.States,
		logger:   logger,
		schedule: schedule,
		ttl:      cfg.TTL,
	}, nil
}

// Start begins the sweep loop. It runs in a background goroutine and
// respects the provided context for shutdown. A non-positive TTL disables
// sweeping entirely.
func (s *Sweeper) Start(ctx context.Context) {
	if s.ttl <= 0 {
		s.logger.Info("state sweeper disabled")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Info("state sweeper started", "ttl", s.ttl)
}

// Stop cancels the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info("state sweeper stopped")
}

// loop sleeps until the next scheduled activation and sweeps.
func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	dropped := s.states.SweepIdle(s.ttl)
	if dropped > 0 {
		s.logger.Info("swept stale conversations", "dropped", dropped, "remaining", s.states.Len())
	}
}
