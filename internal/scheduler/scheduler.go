// Package scheduler runs periodic jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"fjacquet/cashflow/internal/logging"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 5 * time.Minute

// Materializer creates the current month's recurring records.
type Materializer interface {
	MaterializeCurrent(ctx context.Context) (int, error)
}

// Scheduler wraps a cron runner. Jobs never overlap: a run still in
// progress makes the next tick skip.
type Scheduler struct {
	cron    *cron.Cron
	logger  logging.Logger
	timeout time.Duration
}

// New returns an idle Scheduler. Call Start to begin ticking.
func New(logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: DefaultJobTimeout,
	}
}

// AddJob registers fn under name with a standard five-field cron spec.
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.logger.Info("Scheduled job",
		logging.F(logging.FieldJob, name),
		logging.F(logging.FieldSchedule, spec))
	return nil
}

// ScheduleMaterialization registers the monthly recurring materialization.
func (s *Scheduler) ScheduleMaterialization(spec string, m Materializer) error {
	return s.AddJob("materialize", spec, func(ctx context.Context) error {
		n, err := m.MaterializeCurrent(ctx)
		if err != nil {
			return err
		}
		s.logger.Info("Recurring records materialized",
			logging.F(logging.FieldJob, "materialize"),
			logging.F(logging.FieldCount, n))
		return nil
	})
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	log := s.logger.WithFields(logging.F(logging.FieldJob, name))
	log.Debug("Running scheduled job")
	if err := fn(ctx); err != nil {
		log.WithError(err).Error("Scheduled job failed")
	}
}

// Start begins ticking in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job, or ctx, to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stopped before running job finished")
	}
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
