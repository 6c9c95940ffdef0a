package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is a small string-keyed value store. It backs the local flag entries,
// which must survive restarts.
type KV interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// WriteKind identifies a server write that can be replayed.
type WriteKind string

const (
	WriteMarkRead WriteKind = "mark_read"
	WriteDelete   WriteKind = "delete"
)

// PendingWrite is a server write that failed and is queued for replay.
type PendingWrite struct {
	ID             string    `db:"id"`
	Kind           WriteKind `db:"kind"`
	NotificationID int64     `db:"notification_id"`
	Attempts       int       `db:"attempts"`
	LastError      string    `db:"last_error"`
	CreatedAt      time.Time `db:"created_at"`
}

// PendingStore persists failed server writes for later replay.
type PendingStore interface {
	// EnqueueWrite records a failed write. An existing entry for the same
	// kind and notification is kept rather than duplicated.
	EnqueueWrite(ctx context.Context, w PendingWrite) error

	// PendingWrites returns queued writes, oldest first.
	PendingWrites(ctx context.Context) ([]PendingWrite, error)

	// RecordAttempt bumps the attempt counter and stores the last error.
	RecordAttempt(ctx context.Context, id string, lastErr string) error

	// DeleteWrite removes a queued write.
	DeleteWrite(ctx context.Context, id string) error
}
