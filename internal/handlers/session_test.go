package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/middleware"
	"github.com/suitewell/suitewell-backend/internal/services"
	"github.com/suitewell/suitewell-backend/internal/types"
)

type stubAuthService struct {
	claims *services.StationClaims
}

func (s *stubAuthService) PairStation(ctx context.Context, stationID uuid.UUID, pairingCode string) (string, error) {
	return "", services.ErrUnauthorized
}

func (s *stubAuthService) ParseToken(tokenString string) (*services.StationClaims, error) {
	return s.claims, nil
}

func (s *stubAuthService) HashPairingCode(code string) (string, error) {
	return code, nil
}

type stubSessionService struct {
	session   *types.WorkoutSession
	lastLimit int
}

func (s *stubSessionService) Create(ctx context.Context, input services.CreateSessionInput) (*types.WorkoutSession, error) {
	return s.session, nil
}

func (s *stubSessionService) Get(ctx context.Context, id uuid.UUID) (*types.WorkoutSession, error) {
	if s.session == nil || s.session.ID != id {
		return nil, services.ErrNotFound
	}
	return s.session, nil
}

func (s *stubSessionService) ListActive(ctx context.Context, propertyID uuid.UUID) ([]*types.WorkoutSession, error) {
	return []*types.WorkoutSession{s.session}, nil
}

func (s *stubSessionService) Dispatch(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]any) (*services.DispatchResult, error) {
	return &services.DispatchResult{Event: event}, nil
}

func (s *stubSessionService) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*types.SessionEvent, error) {
	s.lastLimit = limit
	return []*types.SessionEvent{}, nil
}

func newSessionTestRouter(t *testing.T) (*gin.Engine, *stubSessionService, *types.WorkoutSession) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	propertyID := uuid.New()
	sess := &types.WorkoutSession{ID: uuid.New(), PropertyID: propertyID}
	svc := &stubSessionService{session: sess}

	log := logger.NewNop()
	auth := middleware.NewAuthMiddleware(log, &stubAuthService{
		claims: &services.StationClaims{StationID: uuid.New(), PropertyID: propertyID, Surface: "tablet"},
	})
	handler := NewSessionHandler(log, svc)

	router := gin.New()
	api := router.Group("/api")
	api.Use(auth.RequireStation())
	api.GET("/sessions/:sessionId/events", handler.GetHistory)
	return router, svc, sess
}

func TestGetHistoryLimitParsing(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
	}{
		{name: "default", query: "", wantStatus: http.StatusOK, wantLimit: 50},
		{name: "explicit", query: "?limit=2", wantStatus: http.StatusOK, wantLimit: 2},
		{name: "trailing garbage", query: "?limit=12abc", wantStatus: http.StatusBadRequest},
		{name: "negative", query: "?limit=-1", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "?limit=all", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, svc, sess := newSessionTestRouter(t)

			req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID.String()+"/events"+tc.query, nil)
			req.Header.Set("Authorization", "Bearer station-token")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK && svc.lastLimit != tc.wantLimit {
				t.Fatalf("limit passed to service=%d, want %d", svc.lastLimit, tc.wantLimit)
			}
		})
	}
}
