package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"sportsync/internal/fetcher"
	"sportsync/internal/normalize"
	"sportsync/internal/repository"
)

// CycleRunner is what the scheduler drives; implemented by Pipeline.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*CycleResult, error)
}

// Scheduler triggers cycles on a fixed interval. Cycles are strictly
// sequential: a tick that fires while a cycle is still running is
// skipped, not queued. One failed cycle never halts the next.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	logger   *logrus.Logger
}

func NewScheduler(runner CycleRunner, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// RunOnce executes exactly one cycle synchronously; the caller turns the
// error into a process exit signal.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.runCycle(ctx)
}

// Start runs an immediate first cycle, then one per interval until the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.WithField("interval", s.interval.String()).Info("scheduler started")
	_ = s.runCycle(ctx)

	cronLogger := cron.PrintfLogger(s.logger)
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))
	// An @every literal with a positive interval always parses.
	_, _ = c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		_ = s.runCycle(ctx)
	})
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// runCycle executes one cycle and logs its outcome. Errors are absorbed
// here: classified, logged with the elapsed time, and the scheduler goes
// back to idle.
func (s *Scheduler) runCycle(ctx context.Context) error {
	start := time.Now()
	result, err := s.runner.RunCycle(ctx)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"class":    errorClass(err),
			"duration": time.Since(start).Round(time.Millisecond).String(),
		}).Error("cycle failed")
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"matches":      result.Matches,
		"player_stats": result.PlayerStats,
		"teams":        result.Teams,
		"duration":     result.Duration.Round(time.Millisecond).String(),
	}).Info("cycle completed")
	return nil
}

// errorClass maps a cycle error onto the component that raised it.
func errorClass(err error) string {
	var retrievalErr *fetcher.RetrievalError
	if errors.As(err, &retrievalErr) {
		return "retrieval"
	}
	var schemaErr *normalize.SchemaError
	if errors.As(err, &schemaErr) {
		return "schema"
	}
	var persistenceErr *repository.PersistenceError
	if errors.As(err, &persistenceErr) {
		return "persistence"
	}
	return "internal"
}
