package repository

import (
	"context"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository is the engine's thin view of the question bank.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// UpsertConcept inserts a concept or returns the existing one with the same name.
func (r *QuestionRepository) UpsertConcept(ctx context.Context, c *model.Concept) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO concepts (name, category)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET category = EXCLUDED.category
		 RETURNING id`,
		c.Name, c.Category,
	).Scan(&c.ID)
}

// Create inserts a question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (content, options, correct_answer, explanation, concept_id, difficulty)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, updated_at`,
		q.Content, q.Options, q.CorrectAnswer, q.Explanation, q.ConceptID, q.Difficulty,
	).Scan(&q.ID, &q.UpdatedAt)
}
