package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"joblog/internal/core"
	"joblog/internal/slot/memory"
)

// flakyStore fails the first failures calls to Set.
type flakyStore struct {
	mu       sync.Mutex
	failures int
	calls    int
	values   map[string][]byte
}

func (f *flakyStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return fmt.Errorf("transient failure %d", f.calls)
	}
	if f.values == nil {
		f.values = make(map[string][]byte)
	}
	f.values[key] = value
	return nil
}

func (f *flakyStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// blockingStore holds every Set until release is closed.
type blockingStore struct {
	release chan struct{}
	mu      sync.Mutex
	order   []string
}

func (b *blockingStore) Set(ctx context.Context, _ string, value []byte) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.mu.Lock()
	b.order = append(b.order, string(value))
	b.mu.Unlock()
	return nil
}

func testWriterConfig() SnapshotWriterConfig {
	return SnapshotWriterConfig{MaxRetries: 3, RetryDelay: time.Millisecond}
}

// newTestStore wires a JobStore to a started writer over an in-memory slot.
func newTestStore(t *testing.T, mem *memory.Store) (*JobStore, *SnapshotWriter) {
	t.Helper()
	writer := NewSnapshotWriter(mem, DefaultSlotKey, testWriterConfig(), nil)
	require.NoError(t, writer.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = writer.Stop(ctx)
	})
	store := NewJobStore(mem, writer, JobStoreConfig{Validator: core.DefaultValidator()}, nil)
	return store, writer
}

func flush(t *testing.T, s *JobStore) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

func draft(date, address, total, method, status string) core.Draft {
	return core.Draft{
		Date:          date,
		Address:       address,
		City:          "Springfield",
		Yards:         "2",
		Total:         total,
		PaymentMethod: method,
		PaymentStatus: status,
	}
}

var errBoom = errors.New("boom")
