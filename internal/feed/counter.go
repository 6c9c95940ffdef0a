package feed

import (
	"errors"

	"github.com/nhle/notifeed/internal/api"
)

// countLocked refreshes the global unread count. Failures never reach the
// view; the last good value is kept.
func (s *Subsystem) countLocked() {
	if s.disposed {
		return
	}

	s.countSeq++
	seq := s.countSeq
	ctx := s.ctx

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		n, err := s.api.UnreadCount(ctx)
		s.applyCount(seq, n, err)
	}()
}

func (s *Subsystem) applyCount(seq uint64, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	if seq != s.countSeq {
		s.rec.RecordStaleResponse()
		return
	}

	if err != nil {
		if errors.Is(err, api.ErrNoCredential) {
			s.log.Debug("unread count skipped: no credential")
		} else {
			s.log.WithError(err).Warn("unread count fetch failed")
		}
		return
	}

	s.unread = n
	s.unreadKnown = true
	s.rec.SetUnreadCount(n)
	s.publishLocked()
}
