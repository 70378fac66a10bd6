package handler

import (
	"errors"
	"net/http"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/response"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// classify maps a service error onto an HTTP status and API code.
func classify(err error) (int, response.ErrCode) {
	var nf *service.NotFoundError
	switch {
	case errors.As(err, &nf):
		switch nf.Resource {
		case "session":
			return http.StatusNotFound, response.ErrSessionNotFound
		case "test":
			return http.StatusNotFound, response.ErrTestNotFound
		case "question":
			return http.StatusNotFound, response.ErrQuestionNotFound
		default:
			return http.StatusNotFound, response.ErrNotFound
		}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrSessionFinalized):
		return http.StatusConflict, response.ErrSessionFinalized
	case errors.Is(err, service.ErrResultNotReady):
		return http.StatusNotFound, response.ErrResultNotReady
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, response.ErrValidation
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// respondError writes the error envelope for a service error. Storage
// failures are logged; finalized-session conflicts are routine under
// auto-submit races and only logged at debug.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	c.Header("Cache-Control", "no-store")

	status, code := classify(err)
	switch {
	case status >= http.StatusInternalServerError:
		_ = c.Error(err)
		log.Error().Err(err).
			Str("request_id", response.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
	case code == response.ErrSessionFinalized:
		log.Debug().Err(err).Msg("Mutation on finalized session")
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		response.FailWithFields(c, status, code, map[string]string{ve.Field: ve.Reason})
		return
	}
	response.Fail(c, status, code)
}
