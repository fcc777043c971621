// Package scheduler provides cron-based scheduling for the daily bill
// reminder scan.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pocketpilot/backend/internal/service"
)

// Config holds the scheduler configuration.
type Config struct {
	// Schedule is a standard 5-field cron expression (e.g. "0 9 * * *" for
	// 9am daily).
	Schedule string
	// Timeout bounds a complete reminder scan.
	Timeout time.Duration
	// Enabled determines if the scheduler should run.
	Enabled bool
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Schedule: "0 9 * * *",
		Timeout:  2 * time.Minute,
		Enabled:  true,
	}
}

// Scheduler runs the reminder scan on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	reminders *service.ReminderService
	config    Config
	logger    *slog.Logger
	entryID   cron.EntryID
}

// New creates a new Scheduler instance.
func New(cfg Config, reminders *service.ReminderService, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		reminders: reminders,
		config:    cfg,
		logger:    logger,
	}
}

// Start begins the scheduler.
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Reminder scheduler is disabled, skipping start")
		return nil
	}

	// The cron runner expects 6 fields with seconds; prepend "0" to the
	// standard 5-field expression.
	schedule := "0 " + s.config.Schedule

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runReminderScan()
	})
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	s.logger.Info("Reminder scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.Duration("timeout", s.config.Timeout),
	)

	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping reminder scheduler...")
	return s.cron.Stop()
}

// RunNow triggers an immediate reminder scan.
func (s *Scheduler) RunNow() {
	go s.runReminderScan()
}

func (s *Scheduler) runReminderScan() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Info("Starting reminder scan", slog.Time("start_time", startTime))

	sent, err := s.reminders.SendDueReminders(ctx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Reminder scan failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return
	}

	s.logger.Info("Reminder scan completed",
		slog.Int("reminders_sent", sent),
		slog.Duration("duration", duration),
	)
}

// NextRunTime returns the next scheduled run time.
func (s *Scheduler) NextRunTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// IsRunning returns true if the scheduler has active entries.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
