package main

import (
	"context"
	"fmt"
	"os"
	"time"

	redisclient "github.com/suitewell/suitewell-backend/internal/clients/redis"
	"github.com/suitewell/suitewell-backend/internal/db"
	"github.com/suitewell/suitewell-backend/internal/handlers"
	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/middleware"
	"github.com/suitewell/suitewell-backend/internal/observability"
	"github.com/suitewell/suitewell-backend/internal/repos"
	"github.com/suitewell/suitewell-backend/internal/server"
	"github.com/suitewell/suitewell-backend/internal/services"
	"github.com/suitewell/suitewell-backend/internal/sse"
	"github.com/suitewell/suitewell-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	tokenTTL := utils.GetEnvAsInt("TOKEN_TTL", 86400, log)
	templateDir := utils.GetEnv("TEMPLATE_DIR", "./templates", log)
	adminAPIKey := os.Getenv("ADMIN_API_KEY")

	// Tracing
	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "suitewell-backend",
		Environment: logMode,
	})
	defer otelShutdown(context.Background())

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	propertyRepo := repos.NewPropertyRepo(thePG, log)
	stationRepo := repos.NewWorkoutStationRepo(thePG, log)
	sessionRepo := repos.NewWorkoutSessionRepo(thePG, log)
	eventRepo := repos.NewSessionEventRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewHub(log)

	// Feed fan-out. With REDIS_ADDR set the feed goes through Redis so
	// every replica's hub sees every message. Without it, single-process
	// mode broadcasts straight to the local hub.
	var emitter services.FeedEmitter = &services.HubEmitter{Hub: sseHub}
	if os.Getenv("REDIS_ADDR") != "" {
		feedBus, err := redisclient.NewFeedBus(log)
		if err != nil {
			log.Error("Redis feed bus init failed", "error", err)
			os.Exit(1)
		}
		defer feedBus.Close()
		if err := feedBus.StartForwarder(ctx, sseHub.Broadcast); err != nil {
			log.Error("Redis feed forwarder failed", "error", err)
			os.Exit(1)
		}
		emitter = &services.BusEmitter{Bus: feedBus}
	}

	// Services
	log.Info("Setting up Services from main...")
	templateService := services.NewTemplateService(log, templateDir)
	if err := templateService.Load(); err != nil {
		log.Error("Could not load workout templates", "error", err, "dir", templateDir)
		os.Exit(1)
	}
	authService := services.NewAuthService(thePG, log, stationRepo, jwtSecretKey, time.Duration(tokenTTL)*time.Second)
	propertyService := services.NewPropertyService(thePG, log, propertyRepo)
	stationService := services.NewStationService(thePG, log, stationRepo, propertyRepo, authService)
	sessionService := services.NewSessionService(thePG, log, sessionRepo, eventRepo, templateService, emitter)

	// Handlers
	log.Info("Setting up handlers from main...")
	sessionHandler := handlers.NewSessionHandler(log, sessionService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	stationHandler := handlers.NewStationHandler(authService, stationService, propertyService)
	feedHandler := handlers.NewFeedHandler(log, sseHub, sessionService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	adminKeyMiddleware := middleware.NewAdminKeyMiddleware(log, adminAPIKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:     authMiddleware,
		AdminKeyMiddleware: adminKeyMiddleware,
		SessionHandler:     sessionHandler,
		TemplateHandler:    templateHandler,
		StationHandler:     stationHandler,
		FeedHandler:        feedHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
