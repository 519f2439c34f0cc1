package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, "jobs"); ok || err != nil {
		t.Fatalf("expected empty slot, got ok=%v err=%v", ok, err)
	}

	value := []byte(`{"version":1}`)
	if err := s.Set(ctx, "jobs", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'X' // caller mutation must not leak into the store

	got, ok, err := s.Get(ctx, "jobs")
	if err != nil || !ok || string(got) != `{"version":1}` {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}
	if s.Writes() != 1 {
		t.Fatalf("expected 1 write, got %d", s.Writes())
	}
}

func TestMemoryStoreFailureInjection(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("disk full")

	s.FailWrites(boom)
	if err := s.Set(ctx, "jobs", []byte("x")); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	s.FailWrites(nil)
	if err := s.Set(ctx, "jobs", []byte("x")); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}

	s.FailReads(boom)
	if _, _, err := s.Get(ctx, "jobs"); !errors.Is(err, boom) {
		t.Fatalf("expected injected read error, got %v", err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	if s := NewFromFiles(dir, "jobs"); s.Writes() != 0 {
		t.Fatalf("unexpected writes on empty seed")
	}

	if err := os.WriteFile(filepath.Join(dir, "jobs.json"), []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s := NewFromFiles(dir, "jobs")
	got, ok, err := s.Get(context.Background(), "jobs")
	if err != nil || !ok || string(got) != "[]" {
		t.Fatalf("unexpected seeded value %q ok=%v err=%v", got, ok, err)
	}
}
