package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/middleware"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/response"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionAPI is the session lifecycle surface the handlers drive.
type SessionAPI interface {
	CreateSession(ctx context.Context, userID, testID uuid.UUID) (*model.TestSession, error)
	RecordAnswer(ctx context.Context, userID, sessionID, questionID uuid.UUID, selection string, marked bool, at *time.Time) error
	RecordTime(ctx context.Context, userID, sessionID, questionID uuid.UUID, cumulativeSeconds int) error
	GetState(ctx context.Context, userID, sessionID uuid.UUID) (*model.SessionState, error)
}

// SubmissionAPI finalizes sessions.
type SubmissionAPI interface {
	Submit(ctx context.Context, userID, sessionID uuid.UUID) (*model.SubmitSummary, error)
	AutoSubmit(ctx context.Context, userID, sessionID uuid.UUID) (*model.SubmitSummary, error)
}

// SessionHandler handles the test-taking endpoints.
type SessionHandler struct {
	sessions    SessionAPI
	submissions SubmissionAPI
	log         zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionAPI, submissions SubmissionAPI, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		submissions: submissions,
		log:         log.With().Str("component", "session_handler").Logger(),
	}
}

// CreateSession godoc
// POST /api/v1/tests/:test_id/sessions
// Opens a new session and freezes the test's answer key for it.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	testID, ok := parseIDParam(c, "test_id")
	if !ok {
		return
	}

	session, err := h.sessions.CreateSession(c.Request.Context(), middleware.GetUserID(c), testID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// RecordAnswer godoc
// POST /api/v1/sessions/:id/answer
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	questionID := uuid.MustParse(req.QuestionID)

	err := h.sessions.RecordAnswer(c.Request.Context(), middleware.GetUserID(c), sessionID,
		questionID, req.SelectedAnswer, req.MarkedForReview, req.AnsweredAt)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// RecordTime godoc
// PUT /api/v1/sessions/:id/time
func (h *SessionHandler) RecordTime(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.RecordTimeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	questionID := uuid.MustParse(req.QuestionID)

	err := h.sessions.RecordTime(c.Request.Context(), middleware.GetUserID(c), sessionID,
		questionID, *req.CumulativeSeconds)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// Submit godoc
// POST /api/v1/sessions/:id/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	h.finalize(c, h.submissions.Submit)
}

// AutoSubmit godoc
// POST /api/v1/sessions/:id/auto-submit
// Called by the client when its countdown reaches zero.
func (h *SessionHandler) AutoSubmit(c *gin.Context) {
	h.finalize(c, h.submissions.AutoSubmit)
}

func (h *SessionHandler) finalize(c *gin.Context, op func(context.Context, uuid.UUID, uuid.UUID) (*model.SubmitSummary, error)) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := op(c.Request.Context(), middleware.GetUserID(c), sessionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// GetState godoc
// GET /api/v1/sessions/:id/state
// Returns status, answers so far and recorded times for client recovery.
func (h *SessionHandler) GetState(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	state, err := h.sessions.GetState(c.Request.Context(), middleware.GetUserID(c), sessionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
