package sheets

import (
	"context"

	"joblog/internal/core"
)

// Ports for outbound adapters.
type (
	// JobMirror replaces the mirrored job table with the given records.
	JobMirror interface {
		MirrorJobs(ctx context.Context, jobs []core.JobRecord) (ref string, err error)
	}

	// WeeklyWriter publishes a weekly summary report.
	WeeklyWriter interface {
		WriteWeekly(ctx context.Context, report core.WeeklyReport) (ref string, err error)
	}

	Sink interface {
		JobMirror
		WeeklyWriter
	}
)
