package feed

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notifeed/internal/api"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
)

// fakeAPI serves a fixed server-side feed. Gates hold a request until the
// test closes them.
type fakeAPI struct {
	mu sync.Mutex

	items     []model.Notification
	fetchErr  error
	unread    int
	countErr  error
	markErr   error
	deleteErr error

	fetchGates map[int]chan struct{}
	markGate   chan struct{}
	deleteGate chan struct{}

	fetches []int
	counts  int
	marks   []int64
	deletes []int64
}

func newFakeAPI(n int) *fakeAPI {
	f := &fakeAPI{fetchGates: make(map[int]chan struct{})}
	for id := int64(1); id <= int64(n); id++ {
		f.items = append(f.items, model.Notification{
			ID:          id,
			Type:        model.NotificationComment,
			Message:     "commented on your article",
			ArticleSlug: "intro-to-terraform",
		})
	}
	f.unread = n
	return f
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) FetchPage(ctx context.Context, page, pageSize int) (*model.FeedPage, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, page)
	gate := f.fetchGates[page]
	f.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	start := (page - 1) * pageSize
	if start >= len(f.items) && page > 1 {
		return nil, &api.StatusError{StatusCode: http.StatusNotFound, Detail: "Invalid page."}
	}
	end := start + pageSize
	if end > len(f.items) {
		end = len(f.items)
	}
	results := make([]model.Notification, end-start)
	copy(results, f.items[start:end])

	return &model.FeedPage{Count: len(f.items), Results: results}, nil
}

func (f *fakeAPI) UnreadCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counts++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.unread, nil
}

func (f *fakeAPI) MarkRead(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.marks = append(f.marks, id)
	gate := f.markGate
	f.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markErr
}

func (f *fakeAPI) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	gate := f.deleteGate
	f.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func (f *fakeAPI) fetchedPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.fetches...)
}

func (f *fakeAPI) countCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts
}

func (f *fakeAPI) markCalls() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.marks...)
}

func (f *fakeAPI) deleteCalls() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.deletes...)
}

type fakeRecorder struct {
	mu        sync.Mutex
	fetches   map[string]int
	stale     int
	mutations map[string]int
	unread    int
	pending   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{fetches: map[string]int{}, mutations: map[string]int{}}
}

func (r *fakeRecorder) RecordFetch(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches[outcome]++
}

func (r *fakeRecorder) RecordStaleResponse() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stale++
}

func (r *fakeRecorder) RecordMutation(kind, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations[kind+"/"+outcome]++
}

func (r *fakeRecorder) SetUnreadCount(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unread = n
}

func (r *fakeRecorder) SetPendingWrites(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = n
}

func (r *fakeRecorder) staleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stale
}

type harness struct {
	sub     *Subsystem
	api     *fakeAPI
	flags   *store.FlagStore
	pending *store.MemoryPending
	rec     *fakeRecorder
	hook    *test.Hook
}

func newHarness(t *testing.T, fake *fakeAPI, opts Options) *harness {
	t.Helper()

	logger, hook := test.NewNullLogger()
	flags := store.OpenFlagStore(context.Background(), store.NewMemoryKV(), store.FlagOptions{Logger: logger})
	pending := store.NewMemoryPending()
	rec := newFakeRecorder()

	opts.Logger = logger
	opts.Recorder = rec
	if opts.Pending == nil {
		opts.Pending = pending
	}

	sub := New(fake, flags, opts)
	t.Cleanup(sub.Dispose)

	return &harness{sub: sub, api: fake, flags: flags, pending: pending, rec: rec, hook: hook}
}

// load fetches the current page and waits for it, including the follow-up
// unread count.
func (h *harness) load(t *testing.T) View {
	t.Helper()
	h.sub.Refresh()
	h.sub.Wait()
	v := h.sub.View()
	require.True(t, v.Loaded)
	return v
}

func ids(items []Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func itemByID(t *testing.T, v View, id int64) Item {
	t.Helper()
	for _, it := range v.Items {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("notification %d not visible", id)
	return Item{}
}
