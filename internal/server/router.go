package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/suitewell/suitewell-backend/internal/handlers"
	"github.com/suitewell/suitewell-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware     *middleware.AuthMiddleware
	AdminKeyMiddleware *middleware.AdminKeyMiddleware
	SessionHandler     *handlers.SessionHandler
	TemplateHandler    *handlers.TemplateHandler
	StationHandler     *handlers.StationHandler
	FeedHandler        *handlers.FeedHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("suitewell-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Admin-Key"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/stations/pair", cfg.StationHandler.Pair)

	// ===============
	// || Admin     ||
	// ===============
	admin := router.Group("/api/admin")
	admin.Use(cfg.AdminKeyMiddleware.RequireAdminKey())
	admin.POST("/properties", cfg.StationHandler.CreateProperty)
	admin.POST("/stations", cfg.StationHandler.CreateStation)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireStation())
	// Sessions
	protected.POST("/sessions", cfg.SessionHandler.CreateSession)
	protected.GET("/sessions", cfg.SessionHandler.ListSessions)
	protected.GET("/sessions/:sessionId", cfg.SessionHandler.GetSession)
	protected.POST("/sessions/:sessionId/event", cfg.SessionHandler.PostEvent)
	protected.GET("/sessions/:sessionId/events", cfg.SessionHandler.GetHistory)
	// Templates
	protected.GET("/templates", cfg.TemplateHandler.ListTemplates)
	protected.GET("/templates/:slug", cfg.TemplateHandler.GetTemplate)
	// Change feed
	protected.GET("/feed/stream", cfg.FeedHandler.Stream)

	return router
}
