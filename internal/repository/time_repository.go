package repository

import (
	"context"
	"fmt"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TimePolicy decides how a new cumulative value meets a stored one.
type TimePolicy string

const (
	// TimePolicyOverwrite stores the latest reported value, even if smaller.
	TimePolicyOverwrite TimePolicy = "overwrite"
	// TimePolicyMonotonic keeps the larger of the stored and reported values.
	TimePolicyMonotonic TimePolicy = "monotonic"
)

// ParseTimePolicy validates a configured policy name.
func ParseTimePolicy(name string) (TimePolicy, error) {
	switch TimePolicy(name) {
	case "", TimePolicyOverwrite:
		return TimePolicyOverwrite, nil
	case TimePolicyMonotonic:
		return TimePolicyMonotonic, nil
	default:
		return "", fmt.Errorf("unknown time policy %q", name)
	}
}

// TimeRepository handles per-question time entries.
type TimeRepository struct {
	pool   *pgxpool.Pool
	policy TimePolicy
}

// NewTimeRepository creates a new TimeRepository.
func NewTimeRepository(pool *pgxpool.Pool, policy TimePolicy) *TimeRepository {
	return &TimeRepository{pool: pool, policy: policy}
}

// Upsert writes the cumulative seconds for (session, question) under the same
// guard as AnswerRepository.Upsert. Returns ErrWriteRejected when nothing was written.
func (r *TimeRepository) Upsert(ctx context.Context, t *model.QuestionTime) error {
	setClause := `time_spent = EXCLUDED.time_spent`
	if r.policy == TimePolicyMonotonic {
		setClause = `time_spent = GREATEST(question_times.time_spent, EXCLUDED.time_spent)`
	}

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO question_times (session_id, question_id, time_spent, updated_at)
		 SELECT s.id, $2, $3, $4
		 FROM test_sessions s
		 WHERE s.id = $1
		   AND s.status = $5
		   AND EXISTS (SELECT 1 FROM session_answer_keys k WHERE k.session_id = s.id AND k.question_id = $2)
		 FOR SHARE OF s
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET `+setClause+`, updated_at = EXCLUDED.updated_at`,
		t.SessionID, t.QuestionID, t.TimeSpent, t.UpdatedAt, model.SessionStatusInProgress,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWriteRejected
	}
	return nil
}

// ListBySession returns all time entries recorded for a session.
func (r *TimeRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.QuestionTime, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, time_spent, updated_at
		 FROM question_times
		 WHERE session_id = $1`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []model.QuestionTime
	for rows.Next() {
		var t model.QuestionTime
		if err := rows.Scan(&t.SessionID, &t.QuestionID, &t.TimeSpent, &t.UpdatedAt); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}
