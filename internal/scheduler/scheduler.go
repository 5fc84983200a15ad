// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPruneSchedule runs event pruning daily at 03:00.
const DefaultPruneSchedule = "0 3 * * *"

// EventPruner deletes audit events older than a cutoff.
type EventPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config configures the scheduler.
type Config struct {
	// PruneSchedule is a standard 5-field cron expression.
	PruneSchedule string
	// EventRetention is how long audit events are kept. Zero disables pruning.
	EventRetention time.Duration
}

// Scheduler handles scheduled maintenance such as pruning the audit log.
type Scheduler struct {
	cron   *cron.Cron
	events EventPruner
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a new scheduler instance.
func New(events EventPruner, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.PruneSchedule == "" {
		cfg.PruneSchedule = DefaultPruneSchedule
	}
	return &Scheduler{
		cron:   cron.New(),
		events: events,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.cfg.EventRetention > 0 && s.events != nil {
		_, err := s.cron.AddFunc(s.cfg.PruneSchedule, func() {
			if _, err := s.PruneEvents(context.Background()); err != nil {
				s.logger.Error("failed to prune audit events", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid prune schedule %q: %w", s.cfg.PruneSchedule, err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PruneEvents deletes events older than the retention period.
func (s *Scheduler) PruneEvents(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.EventRetention)
	n, err := s.events.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned audit events", "count", n, "before", cutoff.Format(time.RFC3339))
	}
	return n, nil
}
