// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher reloads the store snapshot.
type Refresher interface {
	RefreshNow(ctx context.Context) error
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler. spec is a standard 5-field cron
// expression; timeout bounds each refresh run.
func NewScheduler(refresher Refresher, spec string, timeout time.Duration, logger *slog.Logger) *Scheduler {
	// Overlapping runs are skipped; the next tick picks up
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:      c,
		refresher: refresher,
		spec:      spec,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refreshSnapshot); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.spec),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers a refresh (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.refreshSnapshot()
}

func (s *Scheduler) refreshSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	if err := s.refresher.RefreshNow(ctx); err != nil {
		s.logger.Warn("scheduled snapshot refresh failed",
			slog.Duration("elapsed", time.Since(started)),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Info("scheduled snapshot refresh completed",
		slog.Duration("elapsed", time.Since(started)),
	)
}
