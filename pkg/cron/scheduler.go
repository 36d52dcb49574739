// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Sweepable is the maintenance hook a cache exposes to the scheduler.
type Sweepable interface {
	Sweep() int
	Len() int
}

// Scheduler runs the periodic reference-cache sweep using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	cache    Sweepable
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that sweeps cache on the given cron
// expression (standard 5-field format).
func NewScheduler(cache Sweepable, schedule string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		cache:    cache,
		schedule: schedule,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweepCache)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("sweep_schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers a sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.sweepCache()
}

func (s *Scheduler) sweepCache() {
	evicted := s.cache.Sweep()
	s.logger.Info("reference cache swept",
		slog.Int("evicted", evicted),
		slog.Int("remaining", s.cache.Len()),
	)
}
