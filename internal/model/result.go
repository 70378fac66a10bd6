package model

import (
	"time"

	"github.com/google/uuid"
)

// TestResult is the immutable scored artifact of a finalized session.
type TestResult struct {
	ID                 uuid.UUID            `json:"id"`
	SessionID          uuid.UUID            `json:"session_id"`
	UserID             uuid.UUID            `json:"user_id"`
	TestID             uuid.UUID            `json:"test_id"`
	Score              float64              `json:"score"`
	TotalQuestions     int                  `json:"total_questions"`
	CorrectAnswers     int                  `json:"correct_answers"`
	IncorrectAnswers   int                  `json:"incorrect_answers"`
	Unanswered         int                  `json:"unanswered"`
	Percentage         float64              `json:"percentage"`
	ConceptPerformance []ConceptPerformance `json:"concept_performance"`
	Feedback           Feedback             `json:"feedback"`
	CreatedAt          time.Time            `json:"created_at"`
}

// ConceptPerformance aggregates one concept's outcomes within a session.
type ConceptPerformance struct {
	ConceptID      uuid.UUID `json:"concept_id"`
	ConceptName    string    `json:"concept_name"`
	Category       string    `json:"category"`
	TotalQuestions int       `json:"total_questions"`
	Attempted      int       `json:"attempted"`
	Correct        int       `json:"correct"`
	Accuracy       float64   `json:"accuracy"`
	AverageTime    float64   `json:"average_time"`
}

// QuestionOutcome classifies one question of a scored session.
type QuestionOutcome string

const (
	OutcomeCorrect    QuestionOutcome = "correct"
	OutcomeIncorrect  QuestionOutcome = "incorrect"
	OutcomeUnanswered QuestionOutcome = "unanswered"
)

// QuestionBreakdown is one line of the detailed analysis.
type QuestionBreakdown struct {
	QuestionID      uuid.UUID       `json:"question_id"`
	Position        int             `json:"position"`
	ConceptName     string          `json:"concept_name"`
	SelectedAnswer  *string         `json:"selected_answer"`
	CorrectAnswer   string          `json:"correct_answer"`
	Outcome         QuestionOutcome `json:"outcome"`
	TimeSpent       int             `json:"time_spent"`
	MarkedForReview bool            `json:"marked_for_review"`
}

// ResultAnalysis is a result plus its per-question breakdown.
type ResultAnalysis struct {
	Result    *TestResult         `json:"result"`
	Questions []QuestionBreakdown `json:"questions"`
}
