package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"joblog/internal/core"
	"joblog/internal/log"
	"joblog/internal/sheets"
	"joblog/internal/slot"
)

// DefaultWeeklySchedule runs at 20:00 on Saturday, the last day of the week.
const DefaultWeeklySchedule = "0 20 * * 6"

// WeeklyReportScheduler publishes the weekly summary on a cron schedule.
type WeeklyReportScheduler struct {
	cron     *cron.Cron
	schedule string
	reader   slot.Reader
	writer   sheets.WeeklyWriter
	key      string
	order    core.SortOrder
	timeout  time.Duration
	now      func() time.Time
	logger   *log.Logger
}

// NewWeeklyReportScheduler creates a scheduler in loc. An empty schedule
// means DefaultWeeklySchedule.
func NewWeeklyReportScheduler(schedule string, loc *time.Location, reader slot.Reader, writer sheets.WeeklyWriter, key string, order core.SortOrder, logger *log.Logger) *WeeklyReportScheduler {
	if schedule == "" {
		schedule = DefaultWeeklySchedule
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &WeeklyReportScheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		reader:   reader,
		writer:   writer,
		key:      key,
		order:    order,
		timeout:  2 * time.Minute,
		now:      func() time.Time { return time.Now().In(loc) },
		logger:   logger.WithComponent(log.ComponentSchedule),
	}
}

// Start registers the report job and starts the cron loop.
func (s *WeeklyReportScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("schedule weekly report %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("Weekly report scheduler started", "schedule", s.schedule)
	return nil
}

// Stop stops the cron loop and waits for a running report up to ctx.
func (s *WeeklyReportScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.InfoContext(ctx, "Weekly report scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextRun returns the next scheduled time after now.
func (s *WeeklyReportScheduler) NextRun(now time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(s.schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now), nil
}

func (s *WeeklyReportScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.RunOnce(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Weekly report failed",
			log.FieldError, err, log.FieldOperation, log.OpSummary)
	}
}

// RunOnce builds the report from the persisted jobs and writes it.
func (s *WeeklyReportScheduler) RunOnce(ctx context.Context) error {
	jobs, err := LoadJobs(ctx, s.reader, s.key)
	if err != nil {
		return err
	}
	report := core.Summarize(jobs, s.order, s.now())
	ref, err := s.writer.WriteWeekly(ctx, report)
	if err != nil {
		return fmt.Errorf("write weekly report: %w", err)
	}
	s.logger.InfoContext(ctx, "Weekly report written",
		"weeks", len(report.Weeks),
		log.FieldWeekEnding, core.WeekEnding(report.AsOf).String(),
		log.FieldSheetsRef, ref)
	return nil
}
