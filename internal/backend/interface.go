package backend

import (
	"context"

	"joblog/internal/amqp"
	"joblog/internal/sheets"
	"joblog/internal/slot"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the slot store, the optional persistence notifier
// and a cleanup function releasing both.
type BackendResult struct {
	Slot     slot.Store
	Notifier *amqp.Client // nil when AMQP is disabled or unreachable
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the slot store selected by config.Type
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateSink returns the Google Sheets client, or an in-memory sink when
	// no spreadsheet is configured
	CreateSink(ctx context.Context, config Config) (sheets.Sink, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string
	SlotKey       string

	// Optional notifier
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Optional Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleJobsSheet          string
	GoogleWeeklySheet        string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
