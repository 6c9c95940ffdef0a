package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// memoryDSN opens a private in-memory database.
const memoryDSN = ":memory:"

// SQLiteStore implements KV and PendingStore on a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var (
	_ KV           = (*SQLiteStore)(nil)
	_ PendingStore = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps writes serialized and makes ":memory:"
	// refer to one database instead of one per pooled connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting key %q: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}
	return nil
}

// EnqueueWrite records a failed server write. If the same write is already
// queued the existing entry, and its attempt count, is kept.
func (s *SQLiteStore) EnqueueWrite(ctx context.Context, w PendingWrite) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_writes (
			id, kind, notification_id, attempts, last_error, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, notification_id) DO NOTHING`,
		w.ID, string(w.Kind), w.NotificationID, w.Attempts,
		w.LastError, w.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("enqueueing %s for notification %d: %w", w.Kind, w.NotificationID, err)
	}
	return nil
}

// PendingWrites returns every queued write, oldest first.
func (s *SQLiteStore) PendingWrites(ctx context.Context) ([]PendingWrite, error) {
	var writes []PendingWrite
	err := s.db.SelectContext(ctx, &writes, `
		SELECT id, kind, notification_id, attempts, last_error, created_at
		FROM pending_writes
		ORDER BY created_at, notification_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending writes: %w", err)
	}
	return writes, nil
}

// RecordAttempt increments the attempt counter of a queued write.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, id string, lastErr string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE pending_writes SET attempts = attempts + 1, last_error = ? WHERE id = ?",
		lastErr, id,
	)
	if err != nil {
		return fmt.Errorf("recording attempt for pending write %s: %w", id, err)
	}
	return nil
}

// DeleteWrite removes a queued write by ID.
func (s *SQLiteStore) DeleteWrite(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pending_writes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting pending write %s: %w", id, err)
	}
	return nil
}
