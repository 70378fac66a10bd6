package repository

import (
	"context"
	"fmt"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestRepository handles test bundle data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a test by ID.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, question_ids, total_questions, duration, created_at
		 FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.QuestionIDs, &t.TotalQuestions, &t.DurationSeconds, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// Create inserts a test bundle. Tests are never updated afterwards.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	if t.TotalQuestions == 0 {
		t.TotalQuestions = len(t.QuestionIDs)
	}
	if t.TotalQuestions != len(t.QuestionIDs) {
		return fmt.Errorf("total_questions %d does not match %d question ids", t.TotalQuestions, len(t.QuestionIDs))
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (title, question_ids, total_questions, duration)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		t.Title, t.QuestionIDs, t.TotalQuestions, t.DurationSeconds,
	).Scan(&t.ID, &t.CreatedAt)
}
