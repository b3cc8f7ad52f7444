package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"ferreteria/pkg/logger"
)

// ScheduleConfig controls automatic dumps. Either a cron expression or a
// plain interval; cron wins when both are set.
type ScheduleConfig struct {
	// CronExpr is a standard five-field cron expression, e.g. "0 3 * * *".
	CronExpr string
	// Interval runs a dump every fixed period when no cron is given.
	Interval time.Duration
	// PruneAfterRun prunes old dumps after each scheduled run.
	PruneAfterRun bool
}

// Scheduler triggers Manager.Create on a schedule. Cron expressions are
// checked on a one-minute tick, interval mode on its own ticker.
type Scheduler struct {
	manager *Manager
	config  ScheduleConfig
	cron    *gronx.Gronx

	// tick overrides the cron check period in tests.
	tick time.Duration
}

// NewScheduler validates the schedule and creates a scheduler.
func NewScheduler(manager *Manager, config ScheduleConfig) (*Scheduler, error) {
	s := &Scheduler{
		manager: manager,
		config:  config,
		cron:    gronx.New(),
		tick:    time.Minute,
	}

	if config.CronExpr != "" && !s.cron.IsValid(config.CronExpr) {
		return nil, fmt.Errorf("invalid cron expression %q", config.CronExpr)
	}
	if config.CronExpr == "" && config.Interval <= 0 {
		return nil, fmt.Errorf("schedule needs a cron expression or an interval")
	}

	return s, nil
}

// Run blocks until ctx is cancelled, creating dumps on schedule. Failures
// are logged and the schedule keeps going.
func (s *Scheduler) Run(ctx context.Context) {
	period := s.tick
	if s.config.CronExpr == "" {
		period = s.config.Interval
	}

	logger.Info(ctx, "backup scheduler started",
		"cron", s.config.CronExpr,
		"interval", s.config.Interval,
	)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "backup scheduler stopped")
			return
		case now := <-ticker.C:
			if !s.due(now) {
				continue
			}
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) due(now time.Time) bool {
	if s.config.CronExpr == "" {
		return true
	}
	due, err := s.cron.IsDue(s.config.CronExpr, now)
	if err != nil {
		return false
	}
	return due
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.manager.Create(ctx); err != nil {
		logger.Error(ctx, "scheduled backup failed", "error", err)
		return
	}
	if s.config.PruneAfterRun {
		if _, err := s.manager.Prune(ctx); err != nil {
			logger.Error(ctx, "scheduled prune failed", "error", err)
		}
	}
}
