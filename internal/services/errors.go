package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("job not found")
	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("persistence failed")
	// ErrWriterStopped is wrapped by the PersistenceError of a snapshot
	// enqueued while no write loop was running.
	ErrWriterStopped = errors.New("snapshot writer is not running")
)

// NotFoundError is returned when an operation references an unknown job id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError reports a failed read or write of the job slot. The
// in-memory collection stays authoritative when it occurs.
type PersistenceError struct {
	Op       string // "read" or "write"
	Key      string
	Revision uint64
	Err      error
}

func (e *PersistenceError) Error() string {
	if e.Op == "read" {
		return fmt.Sprintf("read slot %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("write slot %q revision %d: %v", e.Key, e.Revision, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
