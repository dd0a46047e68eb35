// Package maintenance runs periodic housekeeping on the projection store.
package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is one housekeeping step.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// CheckpointTask truncates the SQLite write-ahead log.
func CheckpointTask(db *sql.DB) Task {
	return Task{Name: "wal_checkpoint", Run: func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
		return err
	}}
}

// OptimizeTask refreshes SQLite planner statistics.
func OptimizeTask(db *sql.DB) Task {
	return Task{Name: "optimize", Run: func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, "PRAGMA optimize")
		return err
	}}
}

// Scheduler runs tasks on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	tasks    []Task
	logger   *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	entry   cron.EntryID
	started bool
}

// NewScheduler creates a scheduler for tasks. schedule uses the standard
// five-field cron syntax or a descriptor such as "@every 1h".
func NewScheduler(schedule string, logger *slog.Logger, tasks ...Task) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		tasks:    tasks,
		logger:   logger.With("component", "maintenance"),
	}
}

// Start registers the schedule and starts the cron loop. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("maintenance scheduler already started")
	}

	s.ctx = ctx
	id, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(s.ctx); err != nil {
			s.logger.Warn("maintenance run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", s.schedule, err)
	}
	s.entry = id
	s.started = true
	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "schedule", s.schedule, "tasks", len(s.tasks))
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entry)
	s.started = false
	s.logger.Info("maintenance scheduler stopped")
}

// Next returns the next scheduled run, or the zero time when stopped.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// RunOnce runs every task in order. A failing task does not stop the rest.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var errs []error
	for _, t := range s.tasks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		start := time.Now()
		if err := t.Run(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
			continue
		}
		s.logger.Debug("maintenance task done", "task", t.Name, "duration", time.Since(start))
	}
	return errors.Join(errs...)
}
