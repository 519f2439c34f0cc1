package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joblog/internal/amqp"
	"joblog/internal/core"
	sheetsmem "joblog/internal/sheets/memory"
	slotmem "joblog/internal/slot/memory"
	"joblog/internal/snapshot"
)

func seedSlot(t *testing.T, store *slotmem.Store, jobs []core.JobRecord) {
	t.Helper()
	data, err := snapshot.Encode(jobs, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "jobs", data))
}

func sampleJobs() []core.JobRecord {
	mk := func(id string, d core.Date, cents int64, status core.PaymentStatus) core.JobRecord {
		return core.JobRecord{
			ID: id, Date: d, Address: id + " St", City: "Springfield",
			Yards: decimal.NewFromInt(1), Total: core.Money{Cents: cents},
			Payment: core.NewPayment(core.Cash), Status: status,
		}
	}
	return []core.JobRecord{
		mk("a", core.NewDate(2025, 1, 1), 10000, core.Unpaid),
		mk("b", core.NewDate(2025, 1, 4), 10000, core.Unpaid),
		mk("c", core.NewDate(2025, 1, 5), 5000, core.Paid),
	}
}

func TestMirrorWorkerHandleSnapshotPersisted(t *testing.T) {
	slots := slotmem.New()
	seedSlot(t, slots, sampleJobs())
	sink := sheetsmem.New()

	w := NewMirrorWorker(slots, sink, sink, core.Descending, nil)
	w.now = func() time.Time { return time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC) }

	err := w.HandleSnapshotPersisted(context.Background(), amqp.NewSnapshotPersistedMessage("jobs", 3, 3))
	require.NoError(t, err)

	assert.Len(t, sink.Jobs(), 3)
	reports := sink.Reports()
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Weeks, 2)
	assert.Equal(t, "2025-01-11", reports[0].Weeks[0].WeekEnding.String(), "descending order")
	assert.Equal(t, int64(25000), reports[0].MonthToDate.Cents)
}

func TestMirrorWorkerEmptySlot(t *testing.T) {
	sink := sheetsmem.New()
	w := NewMirrorWorker(slotmem.New(), sink, nil, core.Ascending, nil)

	require.NoError(t, w.Sync(context.Background(), "jobs"))
	assert.Equal(t, 1, sink.Mirrors())
	assert.Empty(t, sink.Jobs())
	assert.Empty(t, sink.Reports(), "no weekly writer configured")
}

func TestMirrorWorkerDropsMalformedSnapshot(t *testing.T) {
	slots := slotmem.New()
	require.NoError(t, slots.Set(context.Background(), "jobs", []byte("{not json")))
	sink := sheetsmem.New()
	w := NewMirrorWorker(slots, sink, sink, core.Ascending, nil)

	err := w.HandleSnapshotPersisted(context.Background(), amqp.NewSnapshotPersistedMessage("jobs", 1, 0))
	assert.NoError(t, err, "malformed snapshots are not redelivered")
	assert.Equal(t, 0, sink.Mirrors())
}

func TestMirrorWorkerReturnsRetryableErrors(t *testing.T) {
	boom := errors.New("unavailable")

	slots := slotmem.New()
	slots.FailReads(boom)
	w := NewMirrorWorker(slots, sheetsmem.New(), nil, core.Ascending, nil)
	err := w.HandleSnapshotPersisted(context.Background(), amqp.NewSnapshotPersistedMessage("jobs", 1, 0))
	assert.ErrorIs(t, err, boom)

	slots = slotmem.New()
	seedSlot(t, slots, sampleJobs())
	sink := sheetsmem.New()
	sink.Fail(boom)
	w = NewMirrorWorker(slots, sink, sink, core.Ascending, nil)
	err = w.HandleSnapshotPersisted(context.Background(), amqp.NewSnapshotPersistedMessage("jobs", 1, 3))
	assert.ErrorIs(t, err, boom)
}

func TestWeeklyReportSchedulerRunOnce(t *testing.T) {
	slots := slotmem.New()
	seedSlot(t, slots, sampleJobs())
	sink := sheetsmem.New()

	s := NewWeeklyReportScheduler("", time.UTC, slots, sink, "jobs", core.Ascending, nil)
	s.now = func() time.Time { return time.Date(2025, 1, 4, 20, 0, 0, 0, time.UTC) }

	require.NoError(t, s.RunOnce(context.Background()))
	reports := sink.Reports()
	require.Len(t, reports, 1)
	first := reports[0].Weeks[0]
	assert.Equal(t, "2025-01-04", first.WeekEnding.String())
	assert.Equal(t, 2, first.TotalJobs)
	assert.Equal(t, int64(20000), first.TotalEarned.Cents)
	assert.Equal(t, 2, first.UnpaidJobs)
	assert.Equal(t, "2025-01-04", reports[0].AsOf.String())
}

func TestWeeklyReportSchedulerStartStop(t *testing.T) {
	s := NewWeeklyReportScheduler("", time.UTC, slotmem.New(), sheetsmem.New(), "jobs", core.Ascending, nil)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	bad := NewWeeklyReportScheduler("not a cron line", time.UTC, slotmem.New(), sheetsmem.New(), "jobs", core.Ascending, nil)
	assert.Error(t, bad.Start())
}

func TestWeeklyReportSchedulerNextRun(t *testing.T) {
	s := NewWeeklyReportScheduler("", time.UTC, slotmem.New(), sheetsmem.New(), "jobs", core.Ascending, nil)

	// Wednesday 2025-01-01 -> Saturday 2025-01-04 20:00
	next, err := s.NextRun(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 4, 20, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Saturday, next.Weekday())
}
