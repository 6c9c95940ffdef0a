package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryKV is a process-local KV. Nothing survives a restart.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get returns the value stored under key or ErrNotFound.
func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// MemoryPending is a process-local PendingStore.
type MemoryPending struct {
	mu     sync.Mutex
	writes map[string]PendingWrite
}

// NewMemoryPending returns an empty MemoryPending.
func NewMemoryPending() *MemoryPending {
	return &MemoryPending{writes: make(map[string]PendingWrite)}
}

// EnqueueWrite records w unless the same kind/notification pair is queued.
func (m *MemoryPending) EnqueueWrite(_ context.Context, w PendingWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.writes {
		if existing.Kind == w.Kind && existing.NotificationID == w.NotificationID {
			return nil
		}
	}

	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	m.writes[w.ID] = w
	return nil
}

// PendingWrites returns queued writes, oldest first.
func (m *MemoryPending) PendingWrites(_ context.Context) ([]PendingWrite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	writes := make([]PendingWrite, 0, len(m.writes))
	for _, w := range m.writes {
		writes = append(writes, w)
	}
	sort.Slice(writes, func(i, j int) bool {
		if writes[i].CreatedAt.Equal(writes[j].CreatedAt) {
			return writes[i].NotificationID < writes[j].NotificationID
		}
		return writes[i].CreatedAt.Before(writes[j].CreatedAt)
	})
	return writes, nil
}

// RecordAttempt increments the attempt counter of a queued write.
func (m *MemoryPending) RecordAttempt(_ context.Context, id string, lastErr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.writes[id]
	if !ok {
		return nil
	}
	w.Attempts++
	w.LastError = lastErr
	m.writes[id] = w
	return nil
}

// DeleteWrite removes a queued write.
func (m *MemoryPending) DeleteWrite(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.writes, id)
	return nil
}
