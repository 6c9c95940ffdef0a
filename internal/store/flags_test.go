package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
	"github.com/nhle/notifeed/tests/testutil"
)

// countingKV wraps a KV and counts writes; it can be told to fail.
type countingKV struct {
	store.KV
	sets    int
	failGet error
	failSet error
}

func (c *countingKV) Get(ctx context.Context, key string) (string, error) {
	if c.failGet != nil {
		return "", c.failGet
	}
	return c.KV.Get(ctx, key)
}

func (c *countingKV) Set(ctx context.Context, key, value string) error {
	c.sets++
	if c.failSet != nil {
		return c.failSet
	}
	return c.KV.Set(ctx, key, value)
}

func TestOpenFlagStore_LoadsDefensively(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		read    *string
		removed *string
	}{
		{name: "absent entries"},
		{name: "empty strings", read: strPtr(""), removed: strPtr("")},
		{name: "malformed json", read: strPtr("[1,2"), removed: strPtr("{\"a\":1}")},
		{name: "wrong element type", read: strPtr(`["x"]`), removed: strPtr("true")},
		{name: "json null", read: strPtr("null"), removed: strPtr("null")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := store.NewMemoryKV()
			if tt.read != nil {
				require.NoError(t, kv.Set(ctx, store.ReadIDsKey, *tt.read))
			}
			if tt.removed != nil {
				require.NoError(t, kv.Set(ctx, store.RemovedIDsKey, *tt.removed))
			}

			logger, _ := test.NewNullLogger()
			fs := store.OpenFlagStore(ctx, kv, store.FlagOptions{Logger: logger})

			assert.Equal(t, 0, fs.ReadIDs().Len())
			assert.Equal(t, 0, fs.RemovedIDs().Len())
		})
	}
}

func TestOpenFlagStore_ReadFailureStartsEmpty(t *testing.T) {
	logger, hook := test.NewNullLogger()
	kv := &countingKV{KV: store.NewMemoryKV(), failGet: errors.New("database is locked")}

	fs := store.OpenFlagStore(context.Background(), kv, store.FlagOptions{Logger: logger})

	assert.Equal(t, 0, fs.ReadIDs().Len())
	assert.Equal(t, 0, fs.RemovedIDs().Len())
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestOpenFlagStore_LoadsPersistedIDs(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewTestStore(t)
	testutil.SeedFlags(t, kv, store.ReadIDsKey, 3, 1, 3, -4, 0)
	testutil.SeedFlags(t, kv, store.RemovedIDsKey, 7)

	fs := store.OpenFlagStore(ctx, kv, store.FlagOptions{})

	assert.Equal(t, []int64{1, 3}, fs.ReadIDs().Sorted())
	assert.Equal(t, []int64{7}, fs.RemovedIDs().Sorted())
}

func TestFlagStore_MarkReadPersistsAndReturnsSet(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	fs := store.OpenFlagStore(ctx, s, store.FlagOptions{})
	got := fs.MarkRead(ctx, 5)
	assert.True(t, got.Has(5))

	got = fs.MarkRead(ctx, 2)
	assert.Equal(t, []int64{2, 5}, got.Sorted())

	raw, err := s.Get(ctx, store.ReadIDsKey)
	require.NoError(t, err)
	assert.JSONEq(t, "[5,2]", raw)

	// A second store over the same database sees the same flags.
	reopened := store.OpenFlagStore(ctx, s, store.FlagOptions{})
	assert.Equal(t, []int64{2, 5}, reopened.ReadIDs().Sorted())
	assert.Equal(t, 0, reopened.RemovedIDs().Len())
}

func TestFlagStore_MarkRemovedIsIndependent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	fs := store.OpenFlagStore(ctx, kv, store.FlagOptions{})

	removed := fs.MarkRemoved(ctx, 3)
	assert.True(t, removed.Has(3))
	assert.False(t, fs.ReadIDs().Has(3))

	raw, err := kv.Get(ctx, store.RemovedIDsKey)
	require.NoError(t, err)
	assert.JSONEq(t, "[3]", raw)

	_, err = kv.Get(ctx, store.ReadIDsKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFlagStore_RepeatMarkDoesNotRewrite(t *testing.T) {
	ctx := context.Background()
	kv := &countingKV{KV: store.NewMemoryKV()}
	fs := store.OpenFlagStore(ctx, kv, store.FlagOptions{})

	fs.MarkRead(ctx, 1)
	fs.MarkRead(ctx, 1)
	fs.MarkRemoved(ctx, 1)
	fs.MarkRemoved(ctx, 1)

	assert.Equal(t, 2, kv.sets)
}

func TestFlagStore_ReturnedSetIsACopy(t *testing.T) {
	ctx := context.Background()
	fs := store.OpenFlagStore(ctx, store.NewMemoryKV(), store.FlagOptions{})

	got := fs.MarkRead(ctx, 1)
	got[99] = struct{}{}

	assert.False(t, fs.ReadIDs().Has(99))
}

func TestFlagStore_PersistFailureKeepsFlagInMemory(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	kv := &countingKV{KV: store.NewMemoryKV(), failSet: errors.New("read-only file system")}
	fs := store.OpenFlagStore(ctx, kv, store.FlagOptions{Logger: logger})

	got := fs.MarkRemoved(ctx, 8)

	assert.True(t, got.Has(8))
	assert.True(t, fs.RemovedIDs().Has(8))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestFlagStore_MaxEntriesCapsPersistedListOnly(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	fs := store.OpenFlagStore(ctx, kv, store.FlagOptions{MaxEntries: 3})

	for id := int64(1); id <= 5; id++ {
		fs.MarkRead(ctx, id)
	}

	// The session never forgets a flag.
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, fs.ReadIDs().Sorted())

	raw, err := kv.Get(ctx, store.ReadIDsKey)
	require.NoError(t, err)
	assert.JSONEq(t, "[3,4,5]", raw)

	next := store.OpenFlagStore(ctx, kv, store.FlagOptions{MaxEntries: 3})
	assert.Equal(t, model.NewIDSet(3, 4, 5), next.ReadIDs())
}

func strPtr(s string) *string { return &s }
