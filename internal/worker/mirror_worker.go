package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"joblog/internal/amqp"
	"joblog/internal/core"
	"joblog/internal/log"
	"joblog/internal/sheets"
	"joblog/internal/slot"
	"joblog/internal/snapshot"
)

// MirrorWorker copies persisted job snapshots to the spreadsheet.
type MirrorWorker struct {
	reader slot.Reader
	mirror sheets.JobMirror
	weekly sheets.WeeklyWriter
	order  core.SortOrder
	now    func() time.Time
	logger *log.Logger
}

// NewMirrorWorker creates a worker. weekly may be nil to skip the report.
func NewMirrorWorker(reader slot.Reader, mirror sheets.JobMirror, weekly sheets.WeeklyWriter, order core.SortOrder, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		reader: reader,
		mirror: mirror,
		weekly: weekly,
		order:  order,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSnapshotPersisted mirrors the slot named in msg. The slot is read
// again, so a late message still mirrors the newest snapshot. Read and sheet
// failures are returned for redelivery; a malformed snapshot is logged and
// dropped since retrying cannot fix it.
func (w *MirrorWorker) HandleSnapshotPersisted(ctx context.Context, msg *amqp.SnapshotPersistedMessage) error {
	w.logger.InfoContext(ctx, "Processing snapshot message",
		log.FieldSlotKey, msg.Key,
		log.FieldRevision, msg.Revision)

	err := w.Sync(ctx, msg.Key)
	var derr *snapshot.DecodeError
	if errors.As(err, &derr) {
		w.logger.ErrorContext(ctx, "Skipping malformed snapshot",
			log.NewFields().WithSnapshot(msg.Key, msg.Revision, msg.Jobs).
				WithError(err, log.ErrorTypeDecode).ToSlice()...)
		return nil
	}
	return err
}

// Sync mirrors the current contents of key.
func (w *MirrorWorker) Sync(ctx context.Context, key string) error {
	jobs, err := LoadJobs(ctx, w.reader, key)
	if err != nil {
		return err
	}

	ref, err := w.mirror.MirrorJobs(ctx, jobs)
	if err != nil {
		return fmt.Errorf("mirror jobs: %w", err)
	}
	w.logger.InfoContext(ctx, "Snapshot mirrored",
		log.FieldSlotKey, key,
		log.FieldJobCount, len(jobs),
		log.FieldSheetsRef, ref)

	if w.weekly == nil {
		return nil
	}
	if _, err := w.weekly.WriteWeekly(ctx, core.Summarize(jobs, w.order, w.now())); err != nil {
		return fmt.Errorf("write weekly report: %w", err)
	}
	return nil
}

// LoadJobs reads and decodes the snapshot under key. An absent slot is an
// empty collection.
func LoadJobs(ctx context.Context, reader slot.Reader, key string) ([]core.JobRecord, error) {
	data, ok, err := reader.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	return snapshot.Decode(data)
}
