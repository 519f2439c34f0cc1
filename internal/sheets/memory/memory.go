package memory

import (
	"context"
	"fmt"
	"sync"

	"joblog/internal/core"
	ports "joblog/internal/sheets"
)

// Sink keeps the last mirrored table and every written report in memory.
type Sink struct {
	mu      sync.Mutex
	jobs    []core.JobRecord
	rows    [][]any
	reports []core.WeeklyReport
	mirrors int
	fail    error
}

var _ ports.Sink = (*Sink)(nil)

func New() *Sink {
	return &Sink{}
}

// MirrorJobs stores a copy of jobs and returns a synthetic reference.
func (s *Sink) MirrorJobs(_ context.Context, jobs []core.JobRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}
	s.jobs = append([]core.JobRecord(nil), jobs...)
	s.rows = ports.JobRows(core.SortByDate(jobs, core.Ascending))
	s.mirrors++
	return fmt.Sprintf("mem:jobs:%d", s.mirrors), nil
}

// WriteWeekly appends the report.
func (s *Sink) WriteWeekly(_ context.Context, report core.WeeklyReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}
	s.reports = append(s.reports, report)
	return fmt.Sprintf("mem:weekly:%d", len(s.reports)), nil
}

// Fail makes every call return err until called again with nil.
func (s *Sink) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Jobs returns the last mirrored records.
func (s *Sink) Jobs() []core.JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.JobRecord(nil), s.jobs...)
}

// Rows returns the rows the last mirror would have written.
func (s *Sink) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.rows...)
}

// Reports returns every written report in order.
func (s *Sink) Reports() []core.WeeklyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.WeeklyReport(nil), s.reports...)
}

// Mirrors returns the number of successful MirrorJobs calls.
func (s *Sink) Mirrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirrors
}
