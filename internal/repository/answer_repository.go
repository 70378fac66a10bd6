package repository

import (
	"context"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnswerRepository handles session answers.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Upsert writes the answer for (session, question) in a single statement.
// The row is only written while the session is in_progress and the question
// is part of its answer key; the session row is share-locked so a concurrent
// finalize waits for this write to commit. An older answered_at never
// replaces a newer one. Returns ErrWriteRejected when nothing was written.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.SessionAnswer) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO session_answers (session_id, question_id, selected_answer, marked_for_review, answered_at)
		 SELECT s.id, $2, $3, $4, $5
		 FROM test_sessions s
		 WHERE s.id = $1
		   AND s.status = $6
		   AND EXISTS (SELECT 1 FROM session_answer_keys k WHERE k.session_id = s.id AND k.question_id = $2)
		 FOR SHARE OF s
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET selected_answer = EXCLUDED.selected_answer,
		     marked_for_review = EXCLUDED.marked_for_review,
		     answered_at = EXCLUDED.answered_at
		 WHERE session_answers.answered_at <= EXCLUDED.answered_at`,
		a.SessionID, a.QuestionID, a.SelectedAnswer, a.MarkedForReview, a.AnsweredAt, model.SessionStatusInProgress,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWriteRejected
	}
	return nil
}

// ListBySession returns all answers recorded for a session.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.SessionAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, selected_answer, marked_for_review, answered_at
		 FROM session_answers
		 WHERE session_id = $1
		 ORDER BY answered_at`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.SessionAnswer
	for rows.Next() {
		var a model.SessionAnswer
		if err := rows.Scan(&a.SessionID, &a.QuestionID, &a.SelectedAnswer, &a.MarkedForReview, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
