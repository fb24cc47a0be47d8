/**
 * @description
 * Cron scheduling for recurring report runs. Used when the bot is
 * deployed as a long-running service instead of a one-shot job.
 *
 * @dependencies
 * - github.com/robfig/cron/v3: cron expression parsing and scheduling.
 * - github.com/google/uuid: per-run correlation ids.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler triggers aggregation runs on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a scheduler wrapping the given service. Panics in
// a job are recovered and logged, never propagated.
func NewScheduler(service *Service, schedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger))),
		service:  service,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the report job and starts the cron loop. An invalid
// schedule expression is a configuration fault and is returned to the
// caller instead of being retried.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runReportJob); err != nil {
		return fmt.Errorf("failed to schedule report job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("report job scheduled", "schedule", s.schedule)
	return nil
}

// Stop stops the cron loop. The returned context is done once any
// in-flight run has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// runReportJob executes one aggregation run under its own correlation id.
func (s *Scheduler) runReportJob() {
	logger := s.logger.With("run_id", uuid.NewString())
	logger.Info("starting scheduled report run")
	if err := s.service.Run(context.Background()); err != nil {
		logger.Error("scheduled report run failed", "error", err)
		return
	}
	logger.Info("scheduled report run finished")
}
