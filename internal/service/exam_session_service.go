package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionService owns the in_progress side of the session lifecycle:
// creation, answer recording, time tracking and state recovery.
type SessionService struct {
	tests    TestStore
	sessions SessionStore
	answers  AnswerStore
	times    TimeStore
	state    StateCache
	now      Clock
	log      zerolog.Logger
}

// NewSessionService creates a new SessionService. A nil cache disables caching.
func NewSessionService(
	tests TestStore,
	sessions SessionStore,
	answers AnswerStore,
	times TimeStore,
	state StateCache,
	log zerolog.Logger,
) *SessionService {
	if state == nil {
		state = noopStateCache{}
	}
	return &SessionService{
		tests:    tests,
		sessions: sessions,
		answers:  answers,
		times:    times,
		state:    state,
		now:      time.Now,
		log:      log.With().Str("component", "session_service").Logger(),
	}
}

// WithClock overrides the time source.
func (s *SessionService) WithClock(now Clock) *SessionService {
	s.now = now
	return s
}

// CreateSession starts an attempt of testID for userID and freezes its answer key.
func (s *SessionService) CreateSession(ctx context.Context, userID, testID uuid.UUID) (*model.TestSession, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("test", testID)
		}
		return nil, storageErr("get test", err)
	}

	session, err := s.sessions.Create(ctx, userID, test, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrIncompleteKey) {
			return nil, &ValidationError{Field: "test_id", Reason: "test references questions missing from the bank"}
		}
		return nil, storageErr("create session", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("test_id", testID.String()).
		Str("user_id", userID.String()).
		Msg("Session started")

	return session, nil
}

// RecordAnswer upserts the selection for one question. Repeated calls
// overwrite; the latest answered_at wins. at may be nil to use the server clock.
func (s *SessionService) RecordAnswer(ctx context.Context, userID, sessionID, questionID uuid.UUID, selection string, marked bool, at *time.Time) error {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		return &ValidationError{Field: "selected_answer", Reason: "must not be blank"}
	}
	if questionID == uuid.Nil {
		return &ValidationError{Field: "question_id", Reason: "is required"}
	}

	if _, err := s.loadActive(ctx, userID, sessionID); err != nil {
		return err
	}

	now := s.now().UTC()
	answeredAt := now
	if at != nil && at.Before(now) {
		answeredAt = at.UTC()
	}

	err := s.answers.Upsert(ctx, &model.SessionAnswer{
		SessionID:       sessionID,
		QuestionID:      questionID,
		SelectedAnswer:  selection,
		MarkedForReview: marked,
		AnsweredAt:      answeredAt,
	})
	if err != nil {
		return s.explainRejectedWrite(ctx, "record answer", sessionID, questionID, err)
	}
	return nil
}

// RecordTime stores the client's cumulative seconds for one question.
// Smaller values than previously stored are accepted under the overwrite policy.
func (s *SessionService) RecordTime(ctx context.Context, userID, sessionID, questionID uuid.UUID, cumulativeSeconds int) error {
	if cumulativeSeconds < 0 {
		return &ValidationError{Field: "cumulative_seconds", Reason: "must be >= 0"}
	}
	if questionID == uuid.Nil {
		return &ValidationError{Field: "question_id", Reason: "is required"}
	}

	if _, err := s.loadActive(ctx, userID, sessionID); err != nil {
		return err
	}

	err := s.times.Upsert(ctx, &model.QuestionTime{
		SessionID:  sessionID,
		QuestionID: questionID,
		TimeSpent:  cumulativeSeconds,
		UpdatedAt:  s.now().UTC(),
	})
	if err != nil {
		return s.explainRejectedWrite(ctx, "record time", sessionID, questionID, err)
	}
	return nil
}

// GetState returns the session's status, answers so far and recorded times.
func (s *SessionService) GetState(ctx context.Context, userID, sessionID uuid.UUID) (*model.SessionState, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if cached, err := s.state.Get(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("State cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	test, err := s.tests.GetByID(ctx, session.TestID)
	if err != nil {
		return nil, storageErr("get test", err)
	}
	answers, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storageErr("list answers", err)
	}
	times, err := s.times.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storageErr("list times", err)
	}

	if answers == nil {
		answers = []model.SessionAnswer{}
	}
	if times == nil {
		times = []model.QuestionTime{}
	}

	state := &model.SessionState{
		Session:     *session,
		QuestionIDs: test.QuestionIDs,
		Answers:     answers,
		Times:       times,
	}
	if session.Status == model.SessionStatusInProgress {
		deadline := session.StartTime.Add(test.Duration())
		if remaining := deadline.Sub(s.now()); remaining > 0 {
			state.RemainingSeconds = int(remaining.Seconds())
		}
	}

	if err := s.state.Set(ctx, state); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("State cache write failed")
	}
	return state, nil
}

// loadOwned fetches a session and hides sessions of other users as not found.
func (s *SessionService) loadOwned(ctx context.Context, userID, sessionID uuid.UUID) (*model.TestSession, error) {
	return loadOwnedSession(ctx, s.sessions, userID, sessionID)
}

func (s *SessionService) loadActive(ctx context.Context, userID, sessionID uuid.UUID) (*model.TestSession, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, &SessionFinalizedError{SessionID: sessionID, Status: session.Status}
	}
	return session, nil
}

// explainRejectedWrite turns a guarded-write miss into the domain reason.
// A stale answered_at on an otherwise valid write is accepted as a no-op.
func (s *SessionService) explainRejectedWrite(ctx context.Context, op string, sessionID, questionID uuid.UUID, err error) error {
	if !errors.Is(err, repository.ErrWriteRejected) {
		return storageErr(op, err)
	}

	session, gerr := s.sessions.GetByID(ctx, sessionID)
	if gerr != nil {
		if errors.Is(gerr, repository.ErrNotFound) {
			return notFound("session", sessionID)
		}
		return storageErr(op, gerr)
	}
	if session.Status.IsTerminal() {
		return &SessionFinalizedError{SessionID: sessionID, Status: session.Status}
	}

	ok, herr := s.sessions.HasQuestion(ctx, sessionID, questionID)
	if herr != nil {
		return storageErr(op, herr)
	}
	if !ok {
		return notFound("question", questionID)
	}

	s.log.Debug().
		Str("session_id", sessionID.String()).
		Str("question_id", questionID.String()).
		Msg("Stale write ignored")
	return nil
}

func loadOwnedSession(ctx context.Context, sessions SessionStore, userID, sessionID uuid.UUID) (*model.TestSession, error) {
	session, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("session", sessionID)
		}
		return nil, storageErr("get session", err)
	}
	if userID != uuid.Nil && session.UserID != userID {
		return nil, notFound("session", sessionID)
	}
	return session, nil
}
