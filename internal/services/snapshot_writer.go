package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"joblog/internal/log"
	"joblog/internal/slot"
)

// SnapshotWriterConfig holds configuration for the snapshot writer
type SnapshotWriterConfig struct {
	// MaxRetries is the number of write attempts per snapshot (default: 3)
	MaxRetries int

	// RetryDelay is the pause between attempts (default: 200ms)
	RetryDelay time.Duration
}

// DefaultSnapshotWriterConfig returns sensible defaults
func DefaultSnapshotWriterConfig() SnapshotWriterConfig {
	return SnapshotWriterConfig{
		MaxRetries: 3,
		RetryDelay: 200 * time.Millisecond,
	}
}

// PersistResult is the outcome of writing one snapshot.
type PersistResult struct {
	Key       string
	Revision  uint64
	Jobs      int
	Attempts  int
	Err       error // nil on success, otherwise *PersistenceError
	Completed time.Time
}

// Observer receives every PersistResult in revision order.
type Observer func(ctx context.Context, result PersistResult)

type pendingSnapshot struct {
	revision uint64
	jobs     int
	data     []byte
}

// WriterStatus summarizes persistence progress.
type WriterStatus struct {
	Pending           int
	LastPersisted     uint64
	LastPersistedAt   time.Time
	LastFailed        uint64
	LastError         error
	ConsecutiveErrors int
}

// SnapshotWriter persists encoded snapshots to one slot in the background.
// Enqueue never blocks; snapshots are written in FIFO order and every one of
// them ends in exactly one PersistResult.
type SnapshotWriter struct {
	store  slot.Writer
	key    string
	config SnapshotWriterConfig
	logger *log.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	queue     []pendingSnapshot
	inFlight  int
	wake      chan struct{}
	drained   chan struct{}
	observers []Observer
	status    WriterStatus
}

// NewSnapshotWriter creates a writer for key. It does nothing until Start.
func NewSnapshotWriter(store slot.Writer, key string, config SnapshotWriterConfig, logger *log.Logger) *SnapshotWriter {
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	if logger == nil {
		logger = log.Discard()
	}
	drained := make(chan struct{})
	close(drained)
	return &SnapshotWriter{
		store:   store,
		key:     key,
		config:  config,
		logger:  logger.WithComponent(log.ComponentWriter),
		wake:    make(chan struct{}, 1),
		drained: drained,
	}
}

// Observe registers fn for every future result.
func (w *SnapshotWriter) Observe(fn Observer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

// Enqueue schedules data as the snapshot for revision. The slice must not be
// modified afterwards. When no write loop is running the snapshot fails at
// once with ErrWriterStopped, and observers run on the caller's goroutine.
func (w *SnapshotWriter) Enqueue(revision uint64, jobs int, data []byte) {
	w.mu.Lock()
	if w.outstandingLocked() == 0 {
		w.drained = make(chan struct{})
	}
	if !w.running {
		w.inFlight++
		w.status.Pending = w.outstandingLocked()
		w.mu.Unlock()
		w.complete(context.Background(), PersistResult{
			Key:       w.key,
			Revision:  revision,
			Jobs:      jobs,
			Err:       &PersistenceError{Op: "write", Key: w.key, Revision: revision, Err: ErrWriterStopped},
			Completed: time.Now(),
		})
		return
	}
	w.queue = append(w.queue, pendingSnapshot{revision: revision, jobs: jobs, data: data})
	w.status.Pending = w.outstandingLocked()
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *SnapshotWriter) outstandingLocked() int {
	return len(w.queue) + w.inFlight
}

// Start begins the write loop. Returns an error if already running.
func (w *SnapshotWriter) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("snapshot writer is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	w.logger.InfoContext(ctx, "Snapshot writer started",
		log.FieldSlotKey, w.key,
		"max_retries", w.config.MaxRetries,
		"retry_delay", w.config.RetryDelay)
	return nil
}

// Stop writes everything still queued, then stops the loop.
func (w *SnapshotWriter) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Snapshot writer stopped gracefully")
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Snapshot writer stop timed out",
			"pending", w.Status().Pending)
		return ctx.Err()
	}
	return nil
}

// IsRunning returns whether the writer is currently running
func (w *SnapshotWriter) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Flush blocks until every snapshot enqueued so far has a result.
func (w *SnapshotWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	drained := w.drained
	w.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns a copy of the current persistence status.
func (w *SnapshotWriter) Status() WriterStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *SnapshotWriter) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		if item, ok := w.next(); ok {
			w.persist(ctx, item)
			continue
		}

		select {
		case <-w.wake:
		case <-stopCh:
			for {
				item, ok := w.nextOrRetire()
				if !ok {
					return
				}
				w.persist(ctx, item)
			}
		case <-ctx.Done():
			w.abandon(ctx)
			return
		}
	}
}

func (w *SnapshotWriter) next() (pendingSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nextLocked()
}

// nextOrRetire is next, except that an empty queue also clears running in the
// same critical section. No snapshot can be queued behind an exiting loop.
func (w *SnapshotWriter) nextOrRetire() (pendingSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	item, ok := w.nextLocked()
	if !ok {
		w.running = false
	}
	return item, ok
}

func (w *SnapshotWriter) nextLocked() (pendingSnapshot, bool) {
	if len(w.queue) == 0 {
		return pendingSnapshot{}, false
	}
	item := w.queue[0]
	w.queue[0] = pendingSnapshot{}
	w.queue = w.queue[1:]
	w.inFlight++
	return item, true
}

func (w *SnapshotWriter) persist(ctx context.Context, item pendingSnapshot) {
	var err error
	attempts := 0
	for attempts < w.config.MaxRetries {
		attempts++
		if err = w.store.Set(ctx, w.key, item.data); err == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
		w.logger.WarnContext(ctx, "Snapshot write failed, retrying",
			append(log.NewFields().
				WithSnapshot(w.key, item.revision, item.jobs).
				WithError(err, log.ErrorTypeDatabase).ToSlice(),
				log.FieldAttempts, attempts)...)
		if attempts < w.config.MaxRetries && !w.sleep(ctx) {
			break
		}
	}

	result := PersistResult{
		Key:       w.key,
		Revision:  item.revision,
		Jobs:      item.jobs,
		Attempts:  attempts,
		Completed: time.Now(),
	}
	if err != nil {
		result.Err = &PersistenceError{Op: "write", Key: w.key, Revision: item.revision, Err: err}
	}
	w.complete(ctx, result)
}

// abandon fails every queued snapshot once the loop context is gone.
func (w *SnapshotWriter) abandon(ctx context.Context) {
	for {
		item, ok := w.nextOrRetire()
		if !ok {
			return
		}
		w.complete(ctx, PersistResult{
			Key:       w.key,
			Revision:  item.revision,
			Jobs:      item.jobs,
			Err:       &PersistenceError{Op: "write", Key: w.key, Revision: item.revision, Err: ctx.Err()},
			Completed: time.Now(),
		})
	}
}

func (w *SnapshotWriter) sleep(ctx context.Context) bool {
	if w.config.RetryDelay <= 0 {
		return true
	}
	timer := time.NewTimer(w.config.RetryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *SnapshotWriter) complete(ctx context.Context, result PersistResult) {
	fields := log.NewFields().
		WithOperation(log.OpPersist).
		WithSnapshot(result.Key, result.Revision, result.Jobs)
	if result.Err != nil {
		w.logger.ErrorContext(ctx, "Snapshot not persisted, changes may not survive a restart",
			append(fields.WithError(result.Err, log.ErrorTypeDatabase).ToSlice(),
				log.FieldAttempts, result.Attempts)...)
	} else {
		w.logger.DebugContext(ctx, "Snapshot persisted", fields.ToSlice()...)
	}

	w.mu.Lock()
	observers := append([]Observer(nil), w.observers...)
	if result.Err != nil {
		w.status.LastFailed = result.Revision
		w.status.LastError = result.Err
		w.status.ConsecutiveErrors++
	} else {
		w.status.LastPersisted = result.Revision
		w.status.LastPersistedAt = result.Completed
		w.status.LastError = nil
		w.status.ConsecutiveErrors = 0
	}
	w.mu.Unlock()

	for _, fn := range observers {
		fn(ctx, result)
	}

	w.mu.Lock()
	w.inFlight--
	w.status.Pending = w.outstandingLocked()
	if w.status.Pending == 0 {
		close(w.drained)
	}
	w.mu.Unlock()
}
