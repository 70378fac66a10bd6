package worker

import (
	"context"
	"errors"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SweepBatchSize bounds how many sessions one tick handles per pass.
const SweepBatchSize = 200

// SessionScanner finds sessions needing attention.
type SessionScanner interface {
	ListExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	ListUnscored(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// ExpiredFinalizer auto-submits a session on the server's behalf.
type ExpiredFinalizer interface {
	AutoSubmitExpired(ctx context.Context, sessionID uuid.UUID) (*model.SubmitSummary, error)
}

// BulkQueue accepts several sessions for deferred scoring at once. Sessions
// already queued or in flight are skipped; the count of new entries is returned.
type BulkQueue interface {
	EnqueueMany(ctx context.Context, ids []uuid.UUID) (int, error)
}

// ExpiryWorker auto-submits sessions whose time ran out without a client
// submit, and re-enqueues finalized sessions that still lack a result.
type ExpiryWorker struct {
	sessions  SessionScanner
	finalizer ExpiredFinalizer
	queue     BulkQueue
	interval  time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewExpiryWorker(sessions SessionScanner, finalizer ExpiredFinalizer, queue BulkQueue, interval time.Duration, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		sessions:  sessions,
		finalizer: finalizer,
		queue:     queue,
		interval:  interval,
		now:       time.Now,
		log:       log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start runs a sweep every interval until ctx is cancelled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("ExpiryWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ExpiryWorker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Exported for the recovery CLI.
func (w *ExpiryWorker) Sweep(ctx context.Context) {
	expired, err := w.sessions.ListExpired(ctx, w.now().UTC(), SweepBatchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("List expired sessions failed")
	}

	submitted := 0
	for _, id := range expired {
		if ctx.Err() != nil {
			return
		}
		_, err := w.finalizer.AutoSubmitExpired(ctx, id)
		switch {
		case err == nil:
			submitted++
		case errors.Is(err, service.ErrSessionFinalized):
			// The client's own submit won the race.
		default:
			w.log.Error().Err(err).Str("session_id", id.String()).Msg("Auto-submit failed")
		}
	}

	unscored, err := w.sessions.ListUnscored(ctx, SweepBatchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("List unscored sessions failed")
		return
	}
	requeued, err := w.queue.EnqueueMany(ctx, unscored)
	if err != nil {
		w.log.Error().Err(err).Int("count", len(unscored)).Msg("Enqueue unscored sessions failed")
		return
	}

	if submitted > 0 || requeued > 0 {
		w.log.Info().
			Int("auto_submitted", submitted).
			Int("unscored", len(unscored)).
			Int("requeued", requeued).
			Msg("Sweep finished")
	}
}
