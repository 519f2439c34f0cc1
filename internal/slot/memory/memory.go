package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"joblog/internal/slot"
)

// Store keeps slots in a map. It can be seeded from files and told to fail,
// which makes it the backend for local runs and tests.
type Store struct {
	mu      sync.Mutex
	values  map[string][]byte
	writes  int
	failSet error
	failGet error
}

var _ slot.Store = (*Store)(nil)

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// NewFromFiles seeds slot key from base/<key>.json when that file exists.
func NewFromFiles(base, key string) *Store {
	s := New()
	if data, err := os.ReadFile(filepath.Join(base, key+".json")); err == nil {
		s.values[key] = data
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, false, s.failGet
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return s.failSet
	}
	s.values[key] = append([]byte(nil), value...)
	s.writes++
	return nil
}

// FailWrites makes every Set return err until called again with nil.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet = err
}

// FailReads makes every Get return err until called again with nil.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = err
}

// Writes returns the number of successful Set calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
