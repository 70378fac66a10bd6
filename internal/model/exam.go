package model

import (
	"time"

	"github.com/google/uuid"
)

// Test is an immutable bundle of questions assembled ahead of time.
// Ordering of QuestionIDs is the presentation and scoring order.
type Test struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	QuestionIDs     []uuid.UUID `json:"question_ids"`
	TotalQuestions  int         `json:"total_questions"`
	DurationSeconds int         `json:"duration"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Duration returns the allotted time as a time.Duration.
func (t *Test) Duration() time.Duration {
	return time.Duration(t.DurationSeconds) * time.Second
}
