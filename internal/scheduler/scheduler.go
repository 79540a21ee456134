// Package scheduler runs periodic housekeeping for the advisor server.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"stock-advisor/internal/logger"
)

// Task is a housekeeping function; it reports how many items it touched.
type Task func(ctx context.Context) (int, error)

// Scheduler manages the cron tasks.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	timeout time.Duration
}

// New creates a Scheduler using six-field (seconds first) cron specs.
// Each task run is bounded by timeout.
func New(ctx context.Context, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		ctx:     ctx,
		timeout: timeout,
	}
}

// Register adds a named task. An empty spec leaves the task unscheduled.
func (s *Scheduler) Register(name, spec string, task Task) error {
	if spec == "" {
		logger.Info(s.ctx, "Scheduled task disabled", "task", name)
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, task) }); err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	logger.Info(s.ctx, "Scheduled task registered", "task", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, task Task) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	op := logger.StartOperation(ctx, "scheduler."+name)
	n, err := task(op.Context())
	if err != nil {
		op.EndWithError(err, "task", name)
		return
	}
	op.End("task", name, "affected", n)
	if n > 0 {
		logger.Info(ctx, "Scheduled task finished", "task", name, "affected", n)
	}
}

// RunNow executes a task immediately on the caller's goroutine.
func (s *Scheduler) RunNow(name string, task Task) {
	s.run(name, task)
}

// Entries reports how many tasks are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info(s.ctx, "Scheduler started", "tasks", s.Entries())
}

// Stop stops the scheduler and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info(s.ctx, "Scheduler stopped")
}
