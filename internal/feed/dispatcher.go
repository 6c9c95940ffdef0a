package feed

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nhle/notifeed/internal/api"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
)

// findLocked returns the visible notification with the given id.
func (s *Subsystem) findLocked(id int64) (model.Notification, bool) {
	if s.raw == nil || s.removed.Has(id) {
		return model.Notification{}, false
	}
	for _, n := range s.raw.Results {
		if n.ID == id {
			return n, true
		}
	}
	return model.Notification{}, false
}

// MarkAsRead flags a visible, unread notification as read and tells the
// server in the background. It reports whether anything changed. The local
// flag is kept even if the server call fails.
func (s *Subsystem) MarkAsRead(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markAsReadLocked(id)
}

func (s *Subsystem) markAsReadLocked(id int64) bool {
	if s.disposed {
		return false
	}
	n, ok := s.findLocked(id)
	if !ok || EffectiveRead(n, s.read) {
		return false
	}

	s.read = s.flags.MarkRead(s.ctx, id)
	s.publishLocked()

	ctx := s.ctx
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		err := s.api.MarkRead(ctx, id)
		s.settleWrite(store.WriteMarkRead, id, err)
	}()
	return true
}

// Remove hides a visible notification and deletes it on the server in the
// background. When the delete settles, success or not, the current page is
// fetched once more to refresh the count and page boundaries.
func (s *Subsystem) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return false
	}
	if _, ok := s.findLocked(id); !ok {
		return false
	}

	s.removed = s.flags.MarkRemoved(s.ctx, id)
	s.publishLocked()

	ctx := s.ctx
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		err := s.api.Delete(ctx, id)
		s.settleWrite(store.WriteDelete, id, err)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.fetchLocked()
	}()
	return true
}

// Open returns the article path of a visible notification, marking it read
// first if it is unread.
func (s *Subsystem) Open(id int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.findLocked(id)
	if !ok {
		return "", false
	}
	if !EffectiveRead(n, s.read) {
		s.markAsReadLocked(id)
	}
	return model.ArticlePath(n), true
}

// settleWrite records the outcome of a background write. Failures are
// logged and queued for replay; they are never shown to the user.
func (s *Subsystem) settleWrite(kind store.WriteKind, id int64, err error) {
	if err == nil {
		s.rec.RecordMutation(string(kind), outcomeSuccess)
		return
	}

	s.rec.RecordMutation(string(kind), outcomeFailure)
	log := s.log.WithFields(logrus.Fields{
		"kind":            kind,
		"notification_id": id,
	}).WithError(err)

	// Nothing left to do on the server.
	if api.IsNotFound(err) {
		log.Debug("server write target already gone")
		return
	}
	log.Warn("server write failed; local flag kept")

	if s.pending == nil {
		return
	}

	// The request context may already be cancelled by Dispose; the queue
	// write must still land so the next session can replay it.
	ctx := context.WithoutCancel(s.ctx)
	qerr := s.pending.EnqueueWrite(ctx, store.PendingWrite{
		Kind:           kind,
		NotificationID: id,
		Attempts:       1,
		LastError:      err.Error(),
	})
	if qerr != nil {
		log.WithField("queue_error", qerr).Warn("queueing failed write")
		return
	}
	s.updatePendingGauge(ctx)
}
