package handler

import (
	"context"
	"net/http"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/middleware"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/response"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ResultAPI serves computed results.
type ResultAPI interface {
	GetResult(ctx context.Context, userID, sessionID uuid.UUID) (*model.TestResult, error)
	GetAnalysis(ctx context.Context, userID, sessionID uuid.UUID) (*model.ResultAnalysis, error)
	History(ctx context.Context, userID uuid.UUID, page, perPage int) ([]model.TestResult, int64, error)
}

// ResultHandler handles result endpoints.
type ResultHandler struct {
	results ResultAPI
	log     zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results ResultAPI, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		results: results,
		log:     log.With().Str("component", "result_handler").Logger(),
	}
}

// GetResult godoc
// GET /api/v1/results/:session_id
// Returns the stored result, computing it on first read. 404 while the session is in progress.
func (h *ResultHandler) GetResult(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	res, err := h.results.GetResult(c.Request.Context(), middleware.GetUserID(c), sessionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// GetAnalysis godoc
// GET /api/v1/results/:session_id/analysis
func (h *ResultHandler) GetAnalysis(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	analysis, err := h.results.GetAnalysis(c.Request.Context(), middleware.GetUserID(c), sessionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, analysis)
}

// History godoc
// GET /api/v1/results/users/me/history?page=1&per_page=10
func (h *ResultHandler) History(c *gin.Context) {
	var q model.HistoryQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	items, total, err := h.results.History(c.Request.Context(), middleware.GetUserID(c), q.Page, q.PerPage)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": items},
		response.NewPagination(q.Page, q.PerPage, total))
}
