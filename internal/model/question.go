package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Concept is a topic tag used to group performance statistics.
type Concept struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

// Question is a question bank entry. Only the bank edits it; sessions
// reference it by ID and score against their own answer key snapshot.
type Question struct {
	ID            uuid.UUID       `json:"id"`
	Content       string          `json:"content"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
	ConceptID     uuid.UUID       `json:"concept_id"`
	Difficulty    string          `json:"difficulty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AnswerKeyEntry is one row of the answer key frozen when a session starts.
type AnswerKeyEntry struct {
	QuestionID      uuid.UUID `json:"question_id"`
	Position        int       `json:"position"`
	CorrectAnswer   string    `json:"correct_answer"`
	ConceptID       uuid.UUID `json:"concept_id"`
	ConceptName     string    `json:"concept_name"`
	ConceptCategory string    `json:"concept_category"`
}
