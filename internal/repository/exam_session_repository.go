package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, user_id, test_id, start_time, end_time, status, total_time_spent`

// SessionRepository handles test session data access and the answer key snapshot.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*model.TestSession, error) {
	s := &model.TestSession{}
	if err := row.Scan(&s.ID, &s.UserID, &s.TestID, &s.StartTime, &s.EndTime, &s.Status, &s.TotalTimeSpent); err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts an in_progress session and, in the same transaction, freezes
// the test's answer key for it. Later bank edits do not reach the snapshot.
func (r *SessionRepository) Create(ctx context.Context, userID uuid.UUID, test *model.Test, now time.Time) (*model.TestSession, error) {
	var session *model.TestSession

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := scanSession(tx.QueryRow(ctx,
			`INSERT INTO test_sessions (user_id, test_id, start_time, status)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+sessionColumns,
			userID, test.ID, now, model.SessionStatusInProgress,
		))
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO session_answer_keys
			     (session_id, question_id, position, correct_answer, concept_id, concept_name, concept_category)
			 SELECT $1, q.id, t.ord - 1, q.correct_answer, c.id, c.name, c.category
			 FROM tests te
			 CROSS JOIN LATERAL unnest(te.question_ids) WITH ORDINALITY AS t(qid, ord)
			 JOIN questions q ON q.id = t.qid
			 JOIN concepts c ON c.id = q.concept_id
			 WHERE te.id = $2`,
			s.ID, test.ID,
		)
		if err != nil {
			return fmt.Errorf("snapshot answer key: %w", err)
		}
		if int(tag.RowsAffected()) != len(test.QuestionIDs) {
			return fmt.Errorf("%w: %d of %d questions found", ErrIncompleteKey, tag.RowsAffected(), len(test.QuestionIDs))
		}

		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetByID retrieves a session.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// Finalize moves an in_progress session to a terminal status. The status
// flip is one conditional UPDATE; the total time is summed by a second
// statement of the same transaction, whose fresh snapshot sees every time
// write that committed while the flip waited on the row lock.
// Returns ErrNotInProgress if the session is missing or already terminal.
func (r *SessionRepository) Finalize(ctx context.Context, id uuid.UUID, status model.SessionStatus, now time.Time) (*model.TestSession, error) {
	var session *model.TestSession

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE test_sessions
			 SET status = $2, end_time = $3
			 WHERE id = $1 AND status = $4`,
			id, status, now, model.SessionStatusInProgress,
		)
		if err != nil {
			return fmt.Errorf("flip status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotInProgress
		}

		s, err := scanSession(tx.QueryRow(ctx,
			`UPDATE test_sessions
			 SET total_time_spent = (SELECT COALESCE(SUM(time_spent), 0) FROM question_times WHERE session_id = $1)
			 WHERE id = $1
			 RETURNING `+sessionColumns,
			id,
		))
		if err != nil {
			return fmt.Errorf("sum time: %w", err)
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// AnswerKey returns the session's frozen answer key in test order.
func (r *SessionRepository) AnswerKey(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerKeyEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, position, correct_answer, concept_id, concept_name, concept_category
		 FROM session_answer_keys
		 WHERE session_id = $1
		 ORDER BY position`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var key []model.AnswerKeyEntry
	for rows.Next() {
		var k model.AnswerKeyEntry
		if err := rows.Scan(&k.QuestionID, &k.Position, &k.CorrectAnswer, &k.ConceptID, &k.ConceptName, &k.ConceptCategory); err != nil {
			return nil, err
		}
		key = append(key, k)
	}
	return key, rows.Err()
}

// HasQuestion reports whether the question belongs to the session's answer key.
func (r *SessionRepository) HasQuestion(ctx context.Context, sessionID, questionID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM session_answer_keys WHERE session_id = $1 AND question_id = $2)`,
		sessionID, questionID,
	).Scan(&ok)
	return ok, err
}

// ListExpired returns in_progress sessions whose allotted duration has elapsed at now.
func (r *SessionRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	return r.collectIDs(ctx,
		`SELECT s.id
		 FROM test_sessions s
		 JOIN tests t ON t.id = s.test_id
		 WHERE s.status = $1
		   AND s.start_time + make_interval(secs => t.duration) <= $2
		 ORDER BY s.start_time
		 LIMIT $3`,
		model.SessionStatusInProgress, now, limit,
	)
}

// ListUnscored returns finalized sessions that have no persisted result.
func (r *SessionRepository) ListUnscored(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return r.collectIDs(ctx,
		`SELECT s.id
		 FROM test_sessions s
		 LEFT JOIN test_results r ON r.session_id = s.id
		 WHERE s.status IN ($1, $2) AND r.id IS NULL
		 ORDER BY s.end_time
		 LIMIT $3`,
		model.SessionStatusCompleted, model.SessionStatusAutoSubmitted, limit,
	)
}

func (r *SessionRepository) collectIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
