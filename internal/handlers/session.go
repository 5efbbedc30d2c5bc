package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/middleware"
	"github.com/suitewell/suitewell-backend/internal/services"
	"github.com/suitewell/suitewell-backend/internal/types"
)

type SessionHandler struct {
	log            *logger.Logger
	sessionService services.SessionService
}

func NewSessionHandler(log *logger.Logger, sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{
		log:            log.With("handler", "SessionHandler"),
		sessionService: sessionService,
	}
}

// loadScoped fetches the session and enforces that it belongs to the
// calling station's property. Cross-tenant ids read as not found.
func (sh *SessionHandler) loadScoped(c *gin.Context) (*types.WorkoutSession, bool) {
	id, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", fmt.Errorf("invalid session id"))
		return nil, false
	}

	sess, err := sh.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return nil, false
	}

	claims := middleware.StationClaims(c)
	if claims == nil || sess.PropertyID != claims.PropertyID {
		RespondError(c, http.StatusNotFound, "not_found", services.ErrNotFound)
		return nil, false
	}
	return sess, true
}

func (sh *SessionHandler) CreateSession(c *gin.Context) {
	var body struct {
		TemplateSlug *string `json:"template_slug"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	claims := middleware.StationClaims(c)
	if claims == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrUnauthorized)
		return
	}

	stationID := claims.StationID
	sess, err := sh.sessionService.Create(c.Request.Context(), services.CreateSessionInput{
		PropertyID:   claims.PropertyID,
		StationID:    &stationID,
		TemplateSlug: body.TemplateSlug,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (sh *SessionHandler) ListSessions(c *gin.Context) {
	claims := middleware.StationClaims(c)
	if claims == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrUnauthorized)
		return
	}
	sessions, err := sh.sessionService.ListActive(c.Request.Context(), claims.PropertyID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}

func (sh *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := sh.loadScoped(c)
	if !ok {
		return
	}
	RespondOK(c, sess)
}

// PostEvent is the sole mutation entry point for session state.
func (sh *SessionHandler) PostEvent(c *gin.Context) {
	sess, ok := sh.loadScoped(c)
	if !ok {
		return
	}

	var body struct {
		Event   string         `json:"event"`
		Payload map[string]any `json:"payload"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	res, err := sh.sessionService.Dispatch(c.Request.Context(), sess.ID, body.Event, body.Payload)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"success": true,
		"event":   res.Event,
		"updates": res.Updates,
	})
}

func (sh *SessionHandler) GetHistory(c *gin.Context) {
	sess, ok := sh.loadScoped(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			RespondError(c, http.StatusBadRequest, "invalid_input", fmt.Errorf("invalid limit"))
			return
		}
		limit = parsed
	}

	events, err := sh.sessionService.History(c.Request.Context(), sess.ID, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}
