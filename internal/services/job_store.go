package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"joblog/internal/core"
	"joblog/internal/log"
	"joblog/internal/slot"
	"joblog/internal/snapshot"
)

// DefaultSlotKey is the slot holding the job collection.
const DefaultSlotKey = "jobs"

// JobStoreConfig holds configuration for the job store
type JobStoreConfig struct {
	Key       string
	Validator core.Validator

	// OnLoadError receives decode and read failures from Load.
	OnLoadError func(ctx context.Context, err error)

	// Overridable for tests.
	NewID func() string
	Now   func() time.Time
}

// StoreStatus tells the presentation layer whether changes are durable.
type StoreStatus struct {
	Revision        uint64
	Jobs            int
	Pending         int
	LastPersisted   uint64
	LastPersistedAt time.Time
	LastError       error
	LoadError       error
}

// Durable reports whether every mutation so far reached storage.
func (s StoreStatus) Durable() bool {
	return s.Pending == 0 && s.LastError == nil && s.LastPersisted >= s.Revision
}

// JobStore owns the in-memory job list for the session. Mutations update
// memory synchronously and hand a full snapshot to the SnapshotWriter;
// they are serialized so snapshots reach the writer in mutation order.
type JobStore struct {
	reader    slot.Reader
	writer    *SnapshotWriter
	key       string
	validator core.Validator
	onLoadErr func(ctx context.Context, err error)
	newID     func() string
	now       func() time.Time
	logger    *log.Logger

	mu       sync.RWMutex
	jobs     []core.JobRecord
	revision uint64 // bumped on every persisted mutation
	loadErr  error
}

// NewJobStore creates an empty store. Call Load to restore the persisted
// collection.
func NewJobStore(reader slot.Reader, writer *SnapshotWriter, config JobStoreConfig, logger *log.Logger) *JobStore {
	if config.Key == "" {
		config.Key = DefaultSlotKey
	}
	if config.NewID == nil {
		config.NewID = uuid.NewString
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &JobStore{
		reader:    reader,
		writer:    writer,
		key:       config.Key,
		validator: config.Validator,
		onLoadErr: config.OnLoadError,
		newID:     config.NewID,
		now:       config.Now,
		logger:    logger.WithComponent(log.ComponentStore),
	}
}

// List returns the jobs in insertion order.
func (s *JobStore) List() []core.JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.JobRecord(nil), s.jobs...)
}

// Sorted returns the jobs ordered by date.
func (s *JobStore) Sorted(order core.SortOrder) []core.JobRecord {
	return core.SortByDate(s.List(), order)
}

// Summary aggregates the current jobs into the weekly view-model.
func (s *JobStore) Summary(order core.SortOrder, now time.Time) core.WeeklyReport {
	return core.Summarize(s.List(), order, now)
}

// Current returns the revision together with the jobs it describes.
func (s *JobStore) Current() (uint64, []core.JobRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision, append([]core.JobRecord(nil), s.jobs...)
}

// Get returns the job with id or a *NotFoundError.
func (s *JobStore) Get(id string) (core.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.jobs[i], nil
	}
	return core.JobRecord{}, &NotFoundError{ID: id}
}

// Revision identifies the current in-memory state.
func (s *JobStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Create validates the draft, assigns a fresh id and appends the record.
func (s *JobStore) Create(ctx context.Context, draft core.Draft) (core.JobRecord, error) {
	record, err := s.validator.Validate(draft)
	if err != nil {
		s.logInvalid(ctx, log.OpCreate, "", err)
		return core.JobRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = s.newID()
	for s.indexOf(record.ID) >= 0 {
		record.ID = s.newID()
	}
	s.jobs = append(s.jobs, record)
	s.persistLocked(ctx)

	s.logger.InfoContext(ctx, "Job created", s.jobFields(log.OpCreate, record).ToSlice()...)
	return record, nil
}

// Update validates the draft and replaces the record with id, keeping its
// position. An unknown id returns a *NotFoundError and changes nothing.
func (s *JobStore) Update(ctx context.Context, id string, draft core.Draft) (core.JobRecord, error) {
	record, err := s.validator.Validate(draft)
	if err != nil {
		s.logInvalid(ctx, log.OpUpdate, id, err)
		return core.JobRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.JobRecord{}, &NotFoundError{ID: id}
	}
	record.ID = id
	s.jobs[i] = record
	s.persistLocked(ctx)

	s.logger.InfoContext(ctx, "Job updated", s.jobFields(log.OpUpdate, record).ToSlice()...)
	return record, nil
}

// Delete removes the record with id. Deleting an unknown id is a no-op.
func (s *JobStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.DebugContext(ctx, "Delete of unknown job ignored", log.FieldJobID, id)
		return nil
	}
	removed := s.jobs[i]
	s.jobs = append(s.jobs[:i:i], s.jobs[i+1:]...)
	s.persistLocked(ctx)

	s.logger.InfoContext(ctx, "Job deleted", s.jobFields(log.OpDelete, removed).ToSlice()...)
	return nil
}

// Load replaces the in-memory list with the persisted snapshot. An absent
// slot yields an empty store. Unreadable or malformed contents also yield an
// empty store; the error is reported to OnLoadError and returned so the
// caller can inform the user, but it is never fatal.
func (s *JobStore) Load(ctx context.Context) error {
	data, ok, err := s.reader.Get(ctx, s.key)

	var jobs []core.JobRecord
	var loadErr error
	switch {
	case err != nil:
		loadErr = &PersistenceError{Op: "read", Key: s.key, Err: err}
	case !ok:
	default:
		jobs, loadErr = snapshot.Decode(data)
	}

	s.mu.Lock()
	if loadErr != nil {
		jobs = nil
	}
	s.jobs = jobs
	s.loadErr = loadErr
	s.mu.Unlock()

	fields := log.NewFields().WithOperation(log.OpLoad).WithSnapshot(s.key, 0, len(jobs))
	if loadErr != nil {
		errorType := log.ErrorTypeDatabase
		if errors.Is(loadErr, snapshot.ErrDecode) {
			errorType = log.ErrorTypeDecode
		}
		s.logger.ErrorContext(ctx, "Stored jobs could not be loaded, starting empty",
			fields.WithError(loadErr, errorType).ToSlice()...)
		if s.onLoadErr != nil {
			s.onLoadErr(ctx, loadErr)
		}
		return loadErr
	}

	s.logger.InfoContext(ctx, "Jobs loaded", fields.ToSlice()...)
	return nil
}

// Flush waits until every snapshot handed to the writer has a result.
func (s *JobStore) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Flush(ctx)
}

// Status combines the store revision with the writer's progress.
func (s *JobStore) Status() StoreStatus {
	s.mu.RLock()
	st := StoreStatus{
		Revision:  s.revision,
		Jobs:      len(s.jobs),
		LoadError: s.loadErr,
	}
	s.mu.RUnlock()

	if s.writer != nil {
		ws := s.writer.Status()
		st.Pending = ws.Pending
		st.LastPersisted = ws.LastPersisted
		st.LastPersistedAt = ws.LastPersistedAt
		st.LastError = ws.LastError
	} else {
		st.LastPersisted = st.Revision
	}
	return st
}

func (s *JobStore) persistLocked(ctx context.Context) {
	s.revision++
	if s.writer == nil {
		return
	}
	data, err := snapshot.Encode(s.jobs, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "Snapshot encoding failed",
			log.NewFields().WithSnapshot(s.key, s.revision, len(s.jobs)).
				WithError(err, log.ErrorTypeInternal).ToSlice()...)
		return
	}
	s.writer.Enqueue(s.revision, len(s.jobs), data)
}

func (s *JobStore) indexOf(id string) int {
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *JobStore) jobFields(op string, j core.JobRecord) log.LogFields {
	return log.NewFields().
		WithOperation(op).
		WithJob(j.ID, j.Date.String(), string(j.Payment.Method()), j.Total.Cents).
		WithSnapshot(s.key, s.revision, len(s.jobs))
}

func (s *JobStore) logInvalid(ctx context.Context, op, id string, err error) {
	fields := log.NewFields().WithOperation(op).WithError(err, log.ErrorTypeValidation)
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		fields[log.FieldInvalidField] = verr.Field
	}
	if id != "" {
		fields[log.FieldJobID] = id
	}
	s.logger.WarnContext(ctx, "Job draft rejected", fields.ToSlice()...)
}
