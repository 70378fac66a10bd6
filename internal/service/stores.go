package service

import (
	"context"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/google/uuid"
)

// TestStore reads immutable test bundles.
type TestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
}

// SessionStore persists sessions and their frozen answer keys.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, test *model.Test, now time.Time) (*model.TestSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error)
	Finalize(ctx context.Context, id uuid.UUID, status model.SessionStatus, now time.Time) (*model.TestSession, error)
	AnswerKey(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerKeyEntry, error)
	HasQuestion(ctx context.Context, sessionID, questionID uuid.UUID) (bool, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	ListUnscored(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// AnswerStore persists session answers with guarded upserts.
type AnswerStore interface {
	Upsert(ctx context.Context, a *model.SessionAnswer) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.SessionAnswer, error)
}

// TimeStore persists per-question cumulative times with guarded upserts.
type TimeStore interface {
	Upsert(ctx context.Context, t *model.QuestionTime) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.QuestionTime, error)
}

// ResultStore persists results under a unique session constraint.
type ResultStore interface {
	Insert(ctx context.Context, res *model.TestResult) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, perPage int) ([]model.TestResult, int64, error)
}

// StateCache is a read cache for recovery snapshots. Get returns nil on a miss.
type StateCache interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*model.SessionState, error)
	Set(ctx context.Context, state *model.SessionState) error
}

// ResultMirror is a read-through copy of persisted results. Get returns nil on a miss.
type ResultMirror interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error)
	Set(ctx context.Context, res *model.TestResult) error
}

// ScoringQueue defers result computation to the background worker.
type ScoringQueue interface {
	Enqueue(ctx context.Context, sessionID uuid.UUID) error
}

// Clock returns the current time.
type Clock func() time.Time

type noopStateCache struct{}

func (noopStateCache) Get(context.Context, uuid.UUID) (*model.SessionState, error) { return nil, nil }
func (noopStateCache) Set(context.Context, *model.SessionState) error              { return nil }

type noopResultMirror struct{}

func (noopResultMirror) Get(context.Context, uuid.UUID) (*model.TestResult, error) { return nil, nil }
func (noopResultMirror) Set(context.Context, *model.TestResult) error              { return nil }
