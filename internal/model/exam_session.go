package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates test session states.
type SessionStatus string

const (
	SessionStatusInProgress    SessionStatus = "in_progress"
	SessionStatusCompleted     SessionStatus = "completed"
	SessionStatusAutoSubmitted SessionStatus = "auto_submitted"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusAutoSubmitted
}

// TestSession is one attempt of one user at one Test.
type TestSession struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"user_id"`
	TestID         uuid.UUID     `json:"test_id"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        *time.Time    `json:"end_time,omitempty"`
	Status         SessionStatus `json:"status"`
	TotalTimeSpent int           `json:"total_time_spent"`
}

// SessionAnswer is the latest selection for one (session, question) pair.
type SessionAnswer struct {
	SessionID       uuid.UUID `json:"session_id"`
	QuestionID      uuid.UUID `json:"question_id"`
	SelectedAnswer  string    `json:"selected_answer"`
	MarkedForReview bool      `json:"marked_for_review"`
	AnsweredAt      time.Time `json:"answered_at"`
}

// QuestionTime is the client-reported cumulative seconds for one (session, question) pair.
type QuestionTime struct {
	SessionID  uuid.UUID `json:"session_id"`
	QuestionID uuid.UUID `json:"question_id"`
	TimeSpent  int       `json:"time_spent"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionState is the recovery snapshot returned to a client after reload.
type SessionState struct {
	Session          TestSession     `json:"session"`
	QuestionIDs      []uuid.UUID     `json:"question_ids"`
	Answers          []SessionAnswer `json:"answers"`
	Times            []QuestionTime  `json:"times"`
	RemainingSeconds int             `json:"remaining_seconds"`
}

// SubmitSummary is returned by submit and auto-submit.
// Result is nil when scoring was deferred to the background worker.
type SubmitSummary struct {
	Session TestSession `json:"session"`
	Result  *TestResult `json:"result,omitempty"`
}

// RecordAnswerRequest is the payload for saving one answer.
type RecordAnswerRequest struct {
	QuestionID      string `json:"question_id" binding:"required,uuid"`
	SelectedAnswer  string `json:"selected_answer" binding:"required,notblank,max=10"`
	MarkedForReview bool   `json:"marked_for_review"`

	// AnsweredAt is the client's timestamp; omitted means now. Future values are clamped.
	AnsweredAt *time.Time `json:"answered_at"`
}

// RecordTimeRequest is the payload for syncing the time spent on one question.
type RecordTimeRequest struct {
	QuestionID        string `json:"question_id" binding:"required,uuid"`
	CumulativeSeconds *int   `json:"cumulative_seconds" binding:"required,min=0"`
}

// HistoryQuery holds pagination parameters for the result history.
type HistoryQuery struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
