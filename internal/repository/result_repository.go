package repository

import (
	"context"
	"errors"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resultColumns = `id, session_id, user_id, test_id, score, total_questions, correct_answers,
	incorrect_answers, unanswered, percentage, concept_performance, feedback, created_at`

// ResultRepository handles immutable test results.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func scanResult(row pgx.Row) (*model.TestResult, error) {
	res := &model.TestResult{}
	err := row.Scan(
		&res.ID, &res.SessionID, &res.UserID, &res.TestID, &res.Score, &res.TotalQuestions, &res.CorrectAnswers,
		&res.IncorrectAnswers, &res.Unanswered, &res.Percentage, &res.ConceptPerformance, &res.Feedback, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Insert persists a result. If a result for the session already exists the
// insert is a no-op and ErrDuplicate is returned; the row is never overwritten.
func (r *ResultRepository) Insert(ctx context.Context, res *model.TestResult) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO test_results
		     (session_id, user_id, test_id, score, total_questions, correct_answers,
		      incorrect_answers, unanswered, percentage, concept_performance, feedback)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (session_id) DO NOTHING
		 RETURNING id, created_at`,
		res.SessionID, res.UserID, res.TestID, res.Score, res.TotalQuestions, res.CorrectAnswers,
		res.IncorrectAnswers, res.Unanswered, res.Percentage, res.ConceptPerformance, res.Feedback,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetBySession retrieves the result of a session.
func (r *ResultRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error) {
	res, err := scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM test_results WHERE session_id = $1`, sessionID,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

// ListByUser returns a page of a user's results, newest first, and the total count.
func (r *ResultRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, perPage int) ([]model.TestResult, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_results WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM test_results
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *res)
	}
	return results, total, rows.Err()
}
