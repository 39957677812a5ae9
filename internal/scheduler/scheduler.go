package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// CollectFunc performs one collection cycle.
type CollectFunc func(ctx context.Context) error

// Scheduler owns the daemon loop: it runs one collection immediately and
// then one per interval until the context is cancelled.
type Scheduler struct {
	collect  CollectFunc
	interval time.Duration
	logger   *slog.Logger

	cycles   int
	failures int // consecutive
}

// NewScheduler creates a scheduler that calls collect every interval.
func NewScheduler(collect CollectFunc, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		collect:  collect,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the collection loop. It returns nil when ctx is cancelled
// (graceful shutdown). A failing cycle is logged and the loop continues.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler", "cycles", s.cycles)
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.cycles++
	start := time.Now()

	if err := s.collect(ctx); err != nil {
		s.failures++
		s.logger.Error("collection cycle failed",
			"cycle", s.cycles,
			"consecutive_failures", s.failures,
			"error", err,
		)
		return
	}
	s.failures = 0
	s.logger.Info("collection cycle complete",
		"cycle", s.cycles,
		"duration", time.Since(start).Round(time.Millisecond).String(),
		"next_in", s.interval.String(),
	)
}
