package feed

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/nhle/notifeed/internal/api"
	"github.com/nhle/notifeed/internal/store"
)

func (s *Subsystem) updatePendingGauge(ctx context.Context) {
	writes, err := s.pending.PendingWrites(ctx)
	if err != nil {
		return
	}
	s.rec.SetPendingWrites(len(writes))
}

// replayPending retries queued writes, oldest first. Local flags are not
// touched. Replay stops early when no credential is available, without
// counting that as an attempt.
func (s *Subsystem) replayPending() {
	if s.pending == nil {
		return
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.mu.Unlock()

	writes, err := s.pending.PendingWrites(ctx)
	if err != nil {
		s.log.WithError(err).Warn("reading pending writes")
		return
	}

	for _, w := range writes {
		if ctx.Err() != nil {
			return
		}

		var werr error
		switch w.Kind {
		case store.WriteMarkRead:
			werr = s.api.MarkRead(ctx, w.NotificationID)
		case store.WriteDelete:
			werr = s.api.Delete(ctx, w.NotificationID)
		default:
			s.log.WithField("kind", w.Kind).Warn("dropping pending write of unknown kind")
			_ = s.pending.DeleteWrite(ctx, w.ID)
			continue
		}

		if errors.Is(werr, api.ErrNoCredential) {
			break
		}

		log := s.log.WithFields(logrus.Fields{
			"kind":            w.Kind,
			"notification_id": w.NotificationID,
			"attempts":        w.Attempts + 1,
		})

		switch {
		case werr == nil || api.IsNotFound(werr):
			s.rec.RecordMutation(string(w.Kind), outcomeSuccess)
			log.Debug("pending write replayed")
			_ = s.pending.DeleteWrite(ctx, w.ID)
		case w.Attempts+1 >= s.maxTries:
			s.rec.RecordMutation(string(w.Kind), outcomeFailure)
			log.WithError(werr).Warn("dropping pending write after max attempts")
			_ = s.pending.DeleteWrite(ctx, w.ID)
		default:
			s.rec.RecordMutation(string(w.Kind), outcomeFailure)
			log.WithError(werr).Debug("pending write still failing")
			_ = s.pending.RecordAttempt(ctx, w.ID, werr.Error())
		}
	}

	s.updatePendingGauge(ctx)
}
