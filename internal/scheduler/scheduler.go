package scheduler

import (
	"context"
	"log/slog"
	"time"

	"salvage_search/internal/domain"
)

// CycleRunner runs one alert cycle across all eligible saved searches.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*domain.AlertStats, error)
}

type Scheduler struct {
	runner     CycleRunner
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(runner CycleRunner, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	if _, err := s.runner.RunCycle(cycleCtx); err != nil {
		s.logger.Error("alert cycle failed", "error", err)
	}
}
