package service

import (
	"context"
	"errors"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SubmissionService finalizes sessions. Manual submit and auto-submit race
// through the same conditional update; exactly one wins and scores.
type SubmissionService struct {
	sessions SessionStore
	results  *ResultService
	queue    ScoringQueue
	now      Clock
	log      zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService. queue may be nil,
// in which case a failed inline scoring is left for the next result read.
func NewSubmissionService(sessions SessionStore, results *ResultService, queue ScoringQueue, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		sessions: sessions,
		results:  results,
		queue:    queue,
		now:      time.Now,
		log:      log.With().Str("component", "submission_service").Logger(),
	}
}

// WithClock overrides the time source.
func (s *SubmissionService) WithClock(now Clock) *SubmissionService {
	s.now = now
	return s
}

// Submit finalizes a session as completed on the user's request.
func (s *SubmissionService) Submit(ctx context.Context, userID, sessionID uuid.UUID) (*model.SubmitSummary, error) {
	return s.finalize(ctx, userID, sessionID, model.SessionStatusCompleted)
}

// AutoSubmit finalizes a session as auto_submitted when its countdown ran out.
func (s *SubmissionService) AutoSubmit(ctx context.Context, userID, sessionID uuid.UUID) (*model.SubmitSummary, error) {
	return s.finalize(ctx, userID, sessionID, model.SessionStatusAutoSubmitted)
}

// AutoSubmitExpired is the sweeper's entry point; it skips the ownership check.
func (s *SubmissionService) AutoSubmitExpired(ctx context.Context, sessionID uuid.UUID) (*model.SubmitSummary, error) {
	return s.finalize(ctx, uuid.Nil, sessionID, model.SessionStatusAutoSubmitted)
}

func (s *SubmissionService) finalize(ctx context.Context, userID, sessionID uuid.UUID, status model.SessionStatus) (*model.SubmitSummary, error) {
	current, err := loadOwnedSession(ctx, s.sessions, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, &SessionFinalizedError{SessionID: sessionID, Status: current.Status}
	}

	session, err := s.sessions.Finalize(ctx, sessionID, status, s.now().UTC())
	if err != nil {
		if !errors.Is(err, repository.ErrNotInProgress) {
			return nil, storageErr("finalize session", err)
		}
		// Lost the race: report what the winner left behind.
		latest, gerr := s.sessions.GetByID(ctx, sessionID)
		if gerr != nil {
			if errors.Is(gerr, repository.ErrNotFound) {
				return nil, notFound("session", sessionID)
			}
			return nil, storageErr("get session", gerr)
		}
		return nil, &SessionFinalizedError{SessionID: sessionID, Status: latest.Status}
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("status", string(session.Status)).
		Int("total_time_spent", session.TotalTimeSpent).
		Msg("Session finalized")

	summary := &model.SubmitSummary{Session: *session}

	res, err := s.results.GetOrCompute(ctx, sessionID)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Inline scoring failed, deferring")
		s.deferScoring(ctx, sessionID)
		return summary, nil
	}
	summary.Result = res
	return summary, nil
}

func (s *SubmissionService) deferScoring(ctx context.Context, sessionID uuid.UUID) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(context.WithoutCancel(ctx), sessionID); err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Enqueue for deferred scoring failed")
	}
}
