package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nhle/notifeed/internal/model"
)

// Keys of the two persisted flag entries. Each holds a JSON array of
// notification ids in the order they were flagged.
const (
	ReadIDsKey    = "notifications.read_ids"
	RemovedIDsKey = "notifications.removed_ids"
)

// FlagOptions configures a FlagStore.
type FlagOptions struct {
	// MaxEntries caps how many ids of each list are persisted, keeping the
	// most recently flagged ones. Zero or less persists everything.
	MaxEntries int

	Logger logrus.FieldLogger
}

// flagList is an insertion-ordered id set.
type flagList struct {
	order []int64
	set   model.IDSet
}

func newFlagList(ids []int64) flagList {
	l := flagList{set: make(model.IDSet, len(ids))}
	for _, id := range ids {
		if id <= 0 || l.set.Has(id) {
			continue
		}
		l.set[id] = struct{}{}
		l.order = append(l.order, id)
	}
	return l
}

// add appends id and reports whether the list changed.
func (l *flagList) add(id int64) bool {
	if l.set.Has(id) {
		return false
	}
	l.set[id] = struct{}{}
	l.order = append(l.order, id)
	return true
}

// FlagStore keeps the locally-read and locally-removed notification ids.
// Flags only ever grow: there is no way to unmark an id.
//
// The in-memory sets are authoritative for the session. A failed write to
// the backing KV is logged and the id stays flagged in memory.
type FlagStore struct {
	kv         KV
	maxEntries int
	log        logrus.FieldLogger

	mu      sync.Mutex
	read    flagList
	removed flagList
}

// OpenFlagStore loads both flag entries from kv. Absent, unreadable, or
// malformed entries load as empty sets; this never fails.
func OpenFlagStore(ctx context.Context, kv KV, opts FlagOptions) *FlagStore {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &FlagStore{
		kv:         kv,
		maxEntries: opts.MaxEntries,
		log:        log,
	}
	s.read = newFlagList(s.loadIDs(ctx, ReadIDsKey))
	s.removed = newFlagList(s.loadIDs(ctx, RemovedIDsKey))

	return s
}

// loadIDs reads and decodes one entry, falling back to nil on any problem.
func (s *FlagStore) loadIDs(ctx context.Context, key string) []int64 {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) || (err == nil && raw == "") {
		return nil
	}
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("reading local flags; starting empty")
		return nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("malformed local flags; starting empty")
		return nil
	}
	return ids
}

// ReadIDs returns a copy of the locally-read set.
func (s *FlagStore) ReadIDs() model.IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read.set.Clone()
}

// RemovedIDs returns a copy of the locally-removed set.
func (s *FlagStore) RemovedIDs() model.IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removed.set.Clone()
}

// MarkRead flags id as read, persists the list, and returns the new set.
func (s *FlagStore) MarkRead(ctx context.Context, id int64) model.IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.read.add(id) {
		s.persist(ctx, ReadIDsKey, s.read)
	}
	return s.read.set.Clone()
}

// MarkRemoved flags id as removed, persists the list, and returns the new set.
func (s *FlagStore) MarkRemoved(ctx context.Context, id int64) model.IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed.add(id) {
		s.persist(ctx, RemovedIDsKey, s.removed)
	}
	return s.removed.set.Clone()
}

// persist writes the newest maxEntries ids of l under key. Callers hold s.mu.
func (s *FlagStore) persist(ctx context.Context, key string, l flagList) {
	ids := l.order
	if s.maxEntries > 0 && len(ids) > s.maxEntries {
		ids = ids[len(ids)-s.maxEntries:]
	}

	data, err := json.Marshal(ids)
	if err == nil {
		err = s.kv.Set(ctx, key, string(data))
	}
	if err != nil {
		s.log.WithError(fmt.Errorf("persisting %s: %w", key, err)).
			Warn("local flag kept in memory only")
	}
}
