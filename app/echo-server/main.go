package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appMetrics "replacementGame/app/echo-server/metrics"
	"replacementGame/app/echo-server/router"
	"replacementGame/business/dashboard"
	"replacementGame/business/game"
	"replacementGame/internal/middleware"
	"replacementGame/internal/repository/memory"
	redisRepo "replacementGame/internal/repository/redis"
	"replacementGame/internal/repository/replacement"
	"replacementGame/internal/rest"
	"replacementGame/internal/scheduler"
	"replacementGame/pkg/config"
	redisdb "replacementGame/pkg/database/redis"
	"replacementGame/pkg/logger"
	"replacementGame/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	_ "go.uber.org/automaxprocs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting item replacement game", "version", cfg.App.Version, "replacement_api", cfg.Replacement.BaseURL)

	metrics.Init()
	appMetrics.Init()

	// Init session store
	var (
		sessions    game.SessionRepository
		redisClient *redis.Client
		jobs        *scheduler.Scheduler
	)

	switch cfg.Session.Store {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = redisdb.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		logger.Info("Redis connected successfully")
		sessions = redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
	default:
		memSessions := memory.NewSessionRepository(cfg.Session.TTL)
		jobs = scheduler.New()
		if err := jobs.EverySweep("session-sweep", cfg.Session.SweepInterval, memSessions); err != nil {
			logger.Fatal("Failed to schedule session sweep", "error", err)
		}
		jobs.Start()
		sessions = memSessions
	}

	// Init repo
	replacementRepo := replacement.NewReplacementRepository(replacement.ReplacementConfig{
		BaseURL:   cfg.Replacement.BaseURL,
		Timeout:   cfg.Replacement.Timeout,
		RateLimit: cfg.Replacement.RateLimit,
		RateBurst: cfg.Replacement.RateBurst,
	})

	// Init service
	feedback := game.NewFeedbackDispatcher(replacementRepo, game.DispatcherConfig{
		QueueSize: cfg.Game.FeedbackQueueSize,
		Workers:   cfg.Game.FeedbackWorkers,
		Timeout:   cfg.Game.FeedbackTimeout,
	})
	scorer := game.NewScorer(replacementRepo, feedback, cfg.Game.ScoringConcurrency)
	gameService := game.NewService(replacementRepo, sessions, scorer)
	dashboardService := dashboard.NewService(replacementRepo)

	// Init handler
	gameHandler := rest.NewGameHandler(gameService)
	dashboardHandler := rest.NewDashboardHandler(dashboardService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.TraceID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Setup routes
	router.SetupOperationalRoutes(e)

	players := e.Group("", middleware.Identity(middleware.IdentityConfig{
		Secure: cfg.App.Environment == "production",
	}))
	api := players.Group("/api/v1")
	router.SetupGameRoutes(players, gameHandler)
	router.SetupGameAPIRoutes(api, gameHandler)
	router.SetupDashboardRoutes(players, api, dashboardHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// Pending feedback is flushed after the last submission has finished.
	if err := feedback.Close(ctx); err != nil {
		logger.Error("Feedback dispatcher did not drain", "error", err)
	}

	if jobs != nil {
		jobs.Stop()
	}
	if redisClient != nil {
		if err := redisdb.CloseRedisClient(redisClient); err != nil {
			logger.Error("Redis close error", "error", err)
		}
	}

	logger.Info("Server stopped")
}
