package websocket

import (
	"encoding/json"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer     Action = "answer"
	ActionTime       Action = "time"
	ActionSubmit     Action = "submit"
	ActionAutoSubmit Action = "auto_submit"
	ActionPing       Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action          `json:"action"`
	Raw    json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw frame so the handler can decode the typed request.
func (e *RequestEnvelope) UnmarshalJSON(data []byte) error {
	var head struct {
		Action Action `json:"action"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	e.Action = head.Action
	e.Raw = append(e.Raw[:0], data...)
	return nil
}

// AnswerRequest records one answer.
type AnswerRequest struct {
	QuestionID      string     `json:"question_id"`
	SelectedAnswer  string     `json:"selected_answer"`
	MarkedForReview bool       `json:"marked_for_review"`
	AnsweredAt      *time.Time `json:"answered_at"`
}

// TimeRequest records cumulative time on one question.
type TimeRequest struct {
	QuestionID        string `json:"question_id"`
	CumulativeSeconds *int   `json:"cumulative_seconds"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSaved     Event = "saved"
	EventFinalized Event = "finalized"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// SavedResponse acknowledges an answer or time write.
type SavedResponse struct {
	Event      Event  `json:"event"`
	Action     Action `json:"action"`
	QuestionID string `json:"question_id"`
}

// FinalizedResponse carries the summary of a winning submit.
type FinalizedResponse struct {
	Event   Event             `json:"event"`
	Session model.TestSession `json:"session"`
	Result  *model.TestResult `json:"result"`
}

// ErrorResponse mirrors the HTTP error envelope's code.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
