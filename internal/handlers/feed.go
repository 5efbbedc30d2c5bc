package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/middleware"
	"github.com/suitewell/suitewell-backend/internal/services"
	"github.com/suitewell/suitewell-backend/internal/sse"
)

type FeedHandler struct {
	log            *logger.Logger
	hub            *sse.Hub
	sessionService services.SessionService
}

func NewFeedHandler(log *logger.Logger, hub *sse.Hub, sessionService services.SessionService) *FeedHandler {
	return &FeedHandler{
		log:            log.With("handler", "FeedHandler"),
		hub:            hub,
		sessionService: sessionService,
	}
}

// Stream opens the change-feed SSE connection. Channels come from the
// channels query parameter (comma separated session:<uuid> keys) and each
// one is checked against the station's property before subscribing.
func (fh *FeedHandler) Stream(c *gin.Context) {
	claims := middleware.StationClaims(c)
	if claims == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrUnauthorized)
		return
	}

	raw := strings.TrimSpace(c.Query("channels"))
	if raw == "" {
		RespondError(c, http.StatusBadRequest, "invalid_input", fmt.Errorf("channels required"))
		return
	}

	channels := make([]string, 0, 4)
	for _, ch := range strings.Split(raw, ",") {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		sessionID, err := parseSessionChannel(ch)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_input", err)
			return
		}
		sess, err := fh.sessionService.Get(c.Request.Context(), sessionID)
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		if sess.PropertyID != claims.PropertyID {
			RespondError(c, http.StatusNotFound, "not_found", services.ErrNotFound)
			return
		}
		channels = append(channels, ch)
	}

	client := fh.hub.NewClient(claims.StationID)
	for _, ch := range channels {
		fh.hub.AddChannel(client, ch)
	}
	defer fh.hub.CloseClient(client)

	fh.log.Debug("feed stream opened", "stationID", claims.StationID, "channels", channels)
	fh.hub.ServeHTTP(c.Writer, c.Request, client)
}

func parseSessionChannel(ch string) (uuid.UUID, error) {
	const prefix = "session:"
	if !strings.HasPrefix(ch, prefix) {
		return uuid.Nil, fmt.Errorf("invalid channel %q", ch)
	}
	id, err := uuid.Parse(strings.TrimPrefix(ch, prefix))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid channel %q", ch)
	}
	return id, nil
}
