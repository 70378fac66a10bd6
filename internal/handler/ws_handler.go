package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/middleware"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/response"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/service"
	ws "github.com/Nihar07ops/Gate-Compass-sub002/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler carries the session operations over one WebSocket per session.
type WSHandler struct {
	sessions    SessionAPI
	submissions SubmissionAPI
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions SessionAPI, submissions SubmissionAPI, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions:    sessions,
		submissions: submissions,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:id/stream?token=...
// Accepts answer, time, submit, auto_submit and ping actions.
func (h *WSHandler) SessionStream(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)

	// Ownership and liveness are checked before the upgrade so failures get a plain HTTP status.
	state, err := h.sessions.GetState(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if state.Session.Status.IsTerminal() {
		respondError(c, h.log, &service.SessionFinalizedError{SessionID: sessionID, Status: state.Session.Status})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go conn.KeepAlive(done)

	wsLog := h.log.With().
		Str("user_id", userID.String()).
		Str("session_id", sessionID.String()).
		Logger()
	wsLog.Info().Msg("Client connected")

	s := &streamSession{h: h, conn: conn, log: wsLog, userID: userID, sessionID: sessionID}
	ctx := c.Request.Context()

	for {
		var msg ws.RequestEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			switch {
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
				wsLog.Warn().Err(err).Msg("Unexpected close")
			case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
				_ = conn.WriteError(string(response.ErrInvalidPayload), response.GetMessage(response.ErrInvalidPayload))
				continue
			default:
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		if finished := s.dispatch(ctx, &msg); finished {
			wsLog.Info().Msg("Session finalized, closing stream")
			return
		}
	}
}

// streamSession holds per-connection state for one stream.
type streamSession struct {
	h         *WSHandler
	conn      *ws.Conn
	log       zerolog.Logger
	userID    uuid.UUID
	sessionID uuid.UUID
}

// dispatch handles one frame and reports whether the session is now finalized.
func (s *streamSession) dispatch(ctx context.Context, msg *ws.RequestEnvelope) bool {
	switch msg.Action {
	case ws.ActionAnswer:
		s.handleAnswer(ctx, msg.Raw)
	case ws.ActionTime:
		s.handleTime(ctx, msg.Raw)
	case ws.ActionSubmit:
		return s.handleFinalize(ctx, s.h.submissions.Submit)
	case ws.ActionAutoSubmit:
		return s.handleFinalize(ctx, s.h.submissions.AutoSubmit)
	case ws.ActionPing:
		_ = s.conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
	default:
		s.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		_ = s.conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
	}
	return false
}

func (s *streamSession) handleAnswer(ctx context.Context, raw json.RawMessage) {
	var req ws.AnswerRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		_ = s.conn.WriteError(string(response.ErrInvalidPayload), response.GetMessage(response.ErrInvalidPayload))
		return
	}
	qid, err := uuid.Parse(req.QuestionID)
	if err != nil {
		s.fail(&service.ValidationError{Field: "question_id", Reason: "must be a valid UUID"})
		return
	}

	if err := s.h.sessions.RecordAnswer(ctx, s.userID, s.sessionID, qid, req.SelectedAnswer, req.MarkedForReview, req.AnsweredAt); err != nil {
		s.fail(err)
		return
	}
	_ = s.conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, Action: ws.ActionAnswer, QuestionID: qid.String()})
}

func (s *streamSession) handleTime(ctx context.Context, raw json.RawMessage) {
	var req ws.TimeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		_ = s.conn.WriteError(string(response.ErrInvalidPayload), response.GetMessage(response.ErrInvalidPayload))
		return
	}
	qid, err := uuid.Parse(req.QuestionID)
	if err != nil {
		s.fail(&service.ValidationError{Field: "question_id", Reason: "must be a valid UUID"})
		return
	}
	if req.CumulativeSeconds == nil {
		s.fail(&service.ValidationError{Field: "cumulative_seconds", Reason: "is required"})
		return
	}

	if err := s.h.sessions.RecordTime(ctx, s.userID, s.sessionID, qid, *req.CumulativeSeconds); err != nil {
		s.fail(err)
		return
	}
	_ = s.conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, Action: ws.ActionTime, QuestionID: qid.String()})
}

func (s *streamSession) handleFinalize(ctx context.Context, op func(context.Context, uuid.UUID, uuid.UUID) (*model.SubmitSummary, error)) bool {
	summary, err := op(ctx, s.userID, s.sessionID)
	if err != nil {
		s.fail(err)
		return false
	}

	_ = s.conn.WriteTyped(ws.FinalizedResponse{
		Event:   ws.EventFinalized,
		Session: summary.Session,
		Result:  summary.Result,
	})
	return true
}

// fail reports a service error as an error event, using the HTTP error codes.
func (s *streamSession) fail(err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("Stream operation failed")
	}

	msg := response.GetMessage(code)
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Error()
	}
	_ = s.conn.WriteError(string(code), msg)
}
