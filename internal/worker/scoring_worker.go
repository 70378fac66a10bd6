package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/cache"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	ScorePollTimeout = 1 * time.Second
	ScoreRetryDelay  = 2 * time.Second
)

// ResultComputer produces a session's result exactly once.
type ResultComputer interface {
	GetOrCompute(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error)
}

// SessionQueue is the pending-scoring list. A popped session stays marked
// pending until Done, so sweeps do not queue it again meanwhile.
type SessionQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (uuid.UUID, error)
	Requeue(ctx context.Context, sessionID uuid.UUID) error
	Done(ctx context.Context, sessionID uuid.UUID) error
}

// ScoringWorker drains the pending-scoring queue. Computation is idempotent,
// so several workers on one queue are harmless.
type ScoringWorker struct {
	results     ResultComputer
	queue       SessionQueue
	concurrency int
	retryDelay  time.Duration
	log         zerolog.Logger
}

func NewScoringWorker(results ResultComputer, queue SessionQueue, concurrency int, log zerolog.Logger) *ScoringWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ScoringWorker{
		results:     results,
		queue:       queue,
		concurrency: concurrency,
		retryDelay:  ScoreRetryDelay,
		log:         log.With().Str("component", "scoring_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled and every consumer has returned.
func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Int("concurrency", w.concurrency).Msg("ScoringWorker started")

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.consume(ctx)
		}()
	}
	wg.Wait()

	w.log.Info().Msg("ScoringWorker stopped")
}

func (w *ScoringWorker) consume(ctx context.Context) {
	for ctx.Err() == nil {
		id, err := w.queue.Pop(ctx, ScorePollTimeout)
		if err != nil {
			if !errors.Is(err, cache.ErrQueueEmpty) && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("Queue pop failed")
				w.sleep(ctx)
			}
			continue
		}
		w.process(ctx, id)
	}
}

// ----------------------------------------------------------------
// Single item
// ----------------------------------------------------------------

func (w *ScoringWorker) process(ctx context.Context, sessionID uuid.UUID) {
	l := w.log.With().Str("session_id", sessionID.String()).Logger()

	res, err := w.results.GetOrCompute(ctx, sessionID)
	switch {
	case err == nil:
		l.Debug().Float64("score", res.Score).Msg("Deferred result ready")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrResultNotReady):
		// Nothing to score; drop the entry.
		l.Warn().Err(err).Msg("Dropping queued session")
	default:
		l.Error().Err(err).Msg("Deferred scoring failed, requeueing")
		w.sleep(ctx)
		if qerr := w.queue.Requeue(context.WithoutCancel(ctx), sessionID); qerr != nil {
			l.Error().Err(qerr).Msg("Requeue failed; the expiry sweeper will pick it up")
		}
		return
	}

	if err := w.queue.Done(context.WithoutCancel(ctx), sessionID); err != nil {
		l.Warn().Err(err).Msg("Release pending guard failed")
	}
}

func (w *ScoringWorker) sleep(ctx context.Context) {
	t := time.NewTimer(w.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
