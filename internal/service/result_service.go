package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/feedback"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/repository"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/scoring"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ResultService computes each session's result at most once and serves the
// persisted copy afterwards. The unique session constraint on the result
// store is the only coordination between concurrent callers.
type ResultService struct {
	sessions SessionStore
	answers  AnswerStore
	times    TimeStore
	results  ResultStore
	mirror   ResultMirror
	engine   *scoring.Engine
	feedback *feedback.Generator
	log      zerolog.Logger
}

// NewResultService creates a new ResultService. A nil mirror disables the Redis fast lane.
func NewResultService(
	sessions SessionStore,
	answers AnswerStore,
	times TimeStore,
	results ResultStore,
	mirror ResultMirror,
	engine *scoring.Engine,
	generator *feedback.Generator,
	log zerolog.Logger,
) *ResultService {
	if mirror == nil {
		mirror = noopResultMirror{}
	}
	return &ResultService{
		sessions: sessions,
		answers:  answers,
		times:    times,
		results:  results,
		mirror:   mirror,
		engine:   engine,
		feedback: generator,
		log:      log.With().Str("component", "result_service").Logger(),
	}
}

// GetResult returns the caller's result for a session, computing it on first read.
func (s *ResultService) GetResult(ctx context.Context, userID, sessionID uuid.UUID) (*model.TestResult, error) {
	if _, err := loadOwnedSession(ctx, s.sessions, userID, sessionID); err != nil {
		return nil, err
	}
	return s.GetOrCompute(ctx, sessionID)
}

// GetOrCompute returns the existing result for a finalized session, or
// computes, persists and returns it. A caller that loses the insert race
// discards its computation and returns the winner's row.
func (s *ResultService) GetOrCompute(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error) {
	if res, err := s.mirror.Get(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Result mirror read failed")
	} else if res != nil {
		return res, nil
	}

	res, err := s.results.GetBySession(ctx, sessionID)
	if err == nil {
		s.remember(ctx, res)
		return res, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storageErr("get result", err)
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("session", sessionID)
		}
		return nil, storageErr("get session", err)
	}
	if !session.Status.IsTerminal() {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrResultNotReady)
	}

	res, err = s.compute(ctx, session)
	if err != nil {
		return nil, err
	}

	err = s.results.Insert(ctx, res)
	switch {
	case err == nil:
		s.log.Info().
			Str("session_id", sessionID.String()).
			Float64("score", res.Score).
			Float64("percentage", res.Percentage).
			Msg("Result computed")
	case errors.Is(err, repository.ErrDuplicate):
		winner, rerr := s.results.GetBySession(ctx, sessionID)
		if rerr != nil {
			return nil, storageErr("re-read result", rerr)
		}
		s.log.Debug().AnErr("reason", ErrConflict).Str("session_id", sessionID.String()).Msg("Lost result race, serving winner")
		res = winner
	default:
		return nil, storageErr("insert result", err)
	}

	s.remember(ctx, res)
	return res, nil
}

// GetAnalysis returns the result with a per-question breakdown.
func (s *ResultService) GetAnalysis(ctx context.Context, userID, sessionID uuid.UUID) (*model.ResultAnalysis, error) {
	res, err := s.GetResult(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	in, err := s.loadInput(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &model.ResultAnalysis{
		Result:    res,
		Questions: s.engine.Compute(in).Breakdown,
	}, nil
}

// History returns a page of the user's results, newest first.
func (s *ResultService) History(ctx context.Context, userID uuid.UUID, page, perPage int) ([]model.TestResult, int64, error) {
	if page < 1 {
		return nil, 0, &ValidationError{Field: "page", Reason: "must be >= 1"}
	}
	if perPage < 1 || perPage > 100 {
		return nil, 0, &ValidationError{Field: "per_page", Reason: "must be between 1 and 100"}
	}

	results, total, err := s.results.ListByUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, 0, storageErr("list results", err)
	}
	if results == nil {
		results = []model.TestResult{}
	}
	return results, total, nil
}

// compute builds the full result in memory. Nothing is persisted here.
func (s *ResultService) compute(ctx context.Context, session *model.TestSession) (*model.TestResult, error) {
	in, err := s.loadInput(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	out := s.engine.Compute(in)
	return &model.TestResult{
		SessionID:          session.ID,
		UserID:             session.UserID,
		TestID:             session.TestID,
		Score:              out.Score,
		TotalQuestions:     out.TotalQuestions,
		CorrectAnswers:     out.CorrectAnswers,
		IncorrectAnswers:   out.IncorrectAnswers,
		Unanswered:         out.Unanswered,
		Percentage:         out.Percentage,
		ConceptPerformance: out.ConceptPerformance,
		Feedback:           s.feedback.Generate(out.ConceptPerformance, out.Percentage),
	}, nil
}

func (s *ResultService) loadInput(ctx context.Context, sessionID uuid.UUID) (scoring.Input, error) {
	key, err := s.sessions.AnswerKey(ctx, sessionID)
	if err != nil {
		return scoring.Input{}, storageErr("load answer key", err)
	}
	answers, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return scoring.Input{}, storageErr("list answers", err)
	}
	times, err := s.times.ListBySession(ctx, sessionID)
	if err != nil {
		return scoring.Input{}, storageErr("list times", err)
	}
	return scoring.Input{AnswerKey: key, Answers: answers, Times: times}, nil
}

func (s *ResultService) remember(ctx context.Context, res *model.TestResult) {
	if err := s.mirror.Set(ctx, res); err != nil {
		s.log.Warn().Err(err).Str("session_id", res.SessionID.String()).Msg("Result mirror write failed")
	}
}
