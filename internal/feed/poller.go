package feed

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
)

// View is a snapshot of everything the notification screen renders.
type View struct {
	Page       int
	TotalPages int
	Count      int

	Items      []Item
	PageUnread int
	Empty      EmptyState

	// Unread is the global unread count; UnreadKnown is false until the
	// first successful count fetch.
	Unread      int
	UnreadKnown bool

	// Loading is true while the most recently issued fetch is in flight.
	Loading bool

	// Loaded is true once any page has been applied.
	Loaded bool

	// Err is the error of the most recent settled fetch, if it failed.
	Err error
}

// ViewMsg is a tea.Msg carrying a new View.
type ViewMsg struct {
	View View
}

// Subsystem owns the poll timer, the fetch state and the local flags of one
// notification feed. All methods are safe for concurrent use.
type Subsystem struct {
	api      NotificationAPI
	flags    FlagStore
	pending  store.PendingStore
	pageSize int
	interval time.Duration
	maxTries int
	rec      Recorder
	log      logrus.FieldLogger

	// ctx is cancelled by Dispose and aborts every in-flight request.
	ctx    context.Context
	cancel context.CancelFunc

	inflight sync.WaitGroup
	loop     sync.WaitGroup
	updates  chan View

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	disposed bool

	page        int
	feedSeq     uint64
	countSeq    uint64
	raw         *model.FeedPage
	count       int
	totalPages  int
	loading     bool
	loaded      bool
	err         error
	unread      int
	unreadKnown bool
	read        model.IDSet
	removed     model.IDSet
}

// New creates a Subsystem on page 1. Nothing is fetched until Start or
// Refresh is called.
func New(api NotificationAPI, flags FlagStore, opts Options) *Subsystem {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	return &Subsystem{
		api:      api,
		flags:    flags,
		pending:  opts.Pending,
		pageSize: opts.PageSize,
		interval: opts.PollInterval,
		maxTries: opts.RetryMaxAttempts,
		rec:      opts.Recorder,
		log:      opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		updates:  make(chan View, 1),
		page:     1,
		read:     flags.ReadIDs(),
		removed:  flags.RemovedIDs(),
	}
}

// Start fetches the current page immediately and then polls it every
// interval until Stop or Dispose. ctx bounds the poll loop.
func (s *Subsystem) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.disposed {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})

	s.fetchLocked()

	s.loop.Add(1)
	go s.pollLoop(ctx, s.stopCh)
}

// Stop halts the poll loop. In-flight requests still settle normally.
func (s *Subsystem) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	s.mu.Unlock()

	s.loop.Wait()
}

// Dispose stops polling, cancels in-flight requests and waits for them to
// settle. Responses that arrive afterwards change nothing, and every later
// call is a no-op.
func (s *Subsystem) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.cancel()
	s.mu.Unlock()

	s.Stop()
	s.inflight.Wait()

	s.mu.Lock()
	close(s.updates)
	s.mu.Unlock()
}

// Wait blocks until every in-flight request, and any follow-up request it
// triggered, has settled.
func (s *Subsystem) Wait() {
	s.inflight.Wait()
}

// Refresh re-fetches the current page. It doubles as the retry action.
func (s *Subsystem) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchLocked()
}

// pollLoop replays pending writes and re-fetches the current page on every
// tick. The first replay runs immediately.
func (s *Subsystem) pollLoop(ctx context.Context, stopCh <-chan struct{}) {
	defer s.loop.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.replayPending()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Subsystem) tick() {
	s.replayPending()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchLocked()
}

// View returns the current snapshot.
func (s *Subsystem) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Updates delivers the latest snapshot after every state change. Only the
// newest unread snapshot is kept. The channel is closed by Dispose.
func (s *Subsystem) Updates() <-chan View {
	return s.updates
}

// WaitForUpdate returns a tea.Cmd that waits for the next snapshot. Call it
// again after handling each ViewMsg to keep listening.
func (s *Subsystem) WaitForUpdate() tea.Cmd {
	return func() tea.Msg {
		v, ok := <-s.updates
		if !ok {
			return nil
		}
		return ViewMsg{View: v}
	}
}

func (s *Subsystem) viewLocked() View {
	r := Reconcile(s.raw, s.read, s.removed)
	return View{
		Page:        s.page,
		TotalPages:  s.totalPages,
		Count:       s.count,
		Items:       r.Items,
		PageUnread:  r.PageUnread,
		Empty:       r.Empty,
		Unread:      s.unread,
		UnreadKnown: s.unreadKnown,
		Loading:     s.loading,
		Loaded:      s.loaded,
		Err:         s.err,
	}
}

// publishLocked replaces any undelivered snapshot with the current one.
// Every send happens under s.mu, so after draining there is always room.
func (s *Subsystem) publishLocked() {
	if s.disposed {
		return
	}
	v := s.viewLocked()
	select {
	case <-s.updates:
	default:
	}
	s.updates <- v
}
