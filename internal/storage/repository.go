package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"joblog/internal/slot"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores slot values in a single SQLite table. Each Set
// replaces the whole value under its key.
type SQLiteRepository struct {
	db *sql.DB
}

var _ slot.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements slot.Reader
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get slot %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements slot.Writer
func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = slots.revision + 1,
			updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set slot %q: %w", key, err)
	}

	slog.DebugContext(ctx, "Slot saved to SQLite", "key", key, "bytes", len(value))
	return nil
}

// SlotInfo describes the stored row without its value.
type SlotInfo struct {
	Key       string
	Writes    int64
	UpdatedAt time.Time
	Size      int
}

// Info returns metadata for key; ok is false when the slot was never written.
func (r *SQLiteRepository) Info(ctx context.Context, key string) (SlotInfo, bool, error) {
	info := SlotInfo{Key: key}
	var updated int64
	err := r.db.QueryRowContext(ctx,
		`SELECT revision, updated_at, length(value) FROM slots WHERE key = ?`, key).
		Scan(&info.Writes, &updated, &info.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return SlotInfo{}, false, nil
	}
	if err != nil {
		return SlotInfo{}, false, fmt.Errorf("slot info %q: %w", key, err)
	}
	info.UpdatedAt = time.Unix(updated, 0).UTC()
	return info, true, nil
}
