package feed

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/notifeed/internal/api"
	"github.com/nhle/notifeed/internal/model"
)

// fetchLocked issues a fetch of the current page tagged with a new sequence
// number. Only the response carrying the latest tag is applied.
func (s *Subsystem) fetchLocked() {
	if s.disposed {
		return
	}

	s.feedSeq++
	seq := s.feedSeq
	page := s.page
	ctx := s.ctx

	s.loading = true
	s.publishLocked()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		start := time.Now()
		result, err := s.api.FetchPage(ctx, page, s.pageSize)
		s.applyFetch(seq, page, result, err, time.Since(start))
	}()
}

func (s *Subsystem) applyFetch(seq uint64, page int, result *model.FeedPage, err error, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}

	log := s.log.WithFields(logrus.Fields{"page": page, "seq": seq})
	if seq != s.feedSeq {
		s.rec.RecordStaleResponse()
		log.WithField("latest_seq", s.feedSeq).Debug("discarding stale feed response")
		return
	}

	if err != nil {
		s.rec.RecordFetch(outcomeFailure, elapsed)

		// The page can vanish under us after deletes; fall back one page.
		if api.IsNotFound(err) && page > 1 {
			log.Debug("page no longer exists; stepping back")
			s.page = page - 1
			s.fetchLocked()
			return
		}

		if errors.Is(err, api.ErrNoCredential) {
			log.Info("feed fetch skipped: no credential")
		} else {
			log.WithError(err).Warn("feed fetch failed")
		}
		s.loading = false
		s.err = err
		s.publishLocked()
		s.countLocked()
		return
	}

	s.rec.RecordFetch(outcomeSuccess, elapsed)

	s.raw = result
	s.count = result.Count
	s.totalPages = model.TotalPages(result.Count, s.pageSize)
	s.loading = false
	s.loaded = true
	s.err = nil
	s.publishLocked()
	s.countLocked()
}

// SetPage selects page n, clamped to at least 1 and, once the page count is
// known, to at most the last page. The new page is fetched immediately.
func (s *Subsystem) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 {
		n = 1
	}
	if s.totalPages > 0 && n > s.totalPages {
		n = s.totalPages
	}
	s.page = n
	s.fetchLocked()
}

// NextPage moves forward one page. It reports false on the last known page.
func (s *Subsystem) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page >= s.totalPages {
		return false
	}
	s.page++
	s.fetchLocked()
	return true
}

// PrevPage moves back one page. It reports false on page 1.
func (s *Subsystem) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page <= 1 {
		return false
	}
	s.page--
	s.fetchLocked()
	return true
}
