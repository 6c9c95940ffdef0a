// Package feed keeps a paginated, polled notification feed consistent with
// the locally-tracked read and removed flags.
//
// Local flags are applied optimistically and never rolled back. The server
// catches up through background writes, and failed writes are queued and
// replayed on later poll ticks.
package feed

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
)

// NotificationAPI is the subset of the REST client the feed needs.
type NotificationAPI interface {
	FetchPage(ctx context.Context, page, pageSize int) (*model.FeedPage, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// FlagStore holds the locally-read and locally-removed ids.
type FlagStore interface {
	ReadIDs() model.IDSet
	RemovedIDs() model.IDSet
	MarkRead(ctx context.Context, id int64) model.IDSet
	MarkRemoved(ctx context.Context, id int64) model.IDSet
}

// Recorder receives feed metrics.
type Recorder interface {
	RecordFetch(outcome string, latency time.Duration)
	RecordStaleResponse()
	RecordMutation(kind, outcome string)
	SetUnreadCount(n int)
	SetPendingWrites(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordFetch(string, time.Duration) {}
func (nopRecorder) RecordStaleResponse()              {}
func (nopRecorder) RecordMutation(string, string)     {}
func (nopRecorder) SetUnreadCount(int)                {}
func (nopRecorder) SetPendingWrites(int)              {}

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"

	defaultPollInterval     = 60 * time.Second
	defaultRetryMaxAttempts = 5
)

// Options configures a Subsystem. Zero values select the defaults.
type Options struct {
	PageSize     int
	PollInterval time.Duration

	// Pending queues failed writes for replay. Nil disables the queue.
	Pending          store.PendingStore
	RetryMaxAttempts int

	Recorder Recorder
	Logger   logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = model.PageSize
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.RetryMaxAttempts <= 0 {
		o.RetryMaxAttempts = defaultRetryMaxAttempts
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}
