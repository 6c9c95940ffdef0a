package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nhle/notifeed/internal/store"
)

// NewTestStore opens a private in-memory SQLite database with every
// migration applied. The store is closed when the test ends.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing in-memory store: %v", err)
		}
	})

	return s
}

// SeedFlags writes ids under a flag key the way a previous session would
// have left them.
func SeedFlags(t *testing.T, kv store.KV, key string, ids ...int64) {
	t.Helper()

	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		t.Fatalf("encoding %s: %v", key, err)
	}
	if err := kv.Set(context.Background(), key, string(data)); err != nil {
		t.Fatalf("seeding %s: %v", key, err)
	}
}
