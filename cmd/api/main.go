package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/analysis"
	"github.com/feedbacklens/backend/internal/api/handlers"
	cacheredis "github.com/feedbacklens/backend/internal/cache/redis"
	"github.com/feedbacklens/backend/internal/metrics"
	"github.com/feedbacklens/backend/internal/middleware/ratelimit"
	"github.com/feedbacklens/backend/internal/middleware/security"
	"github.com/feedbacklens/backend/internal/middleware/validation"
	"github.com/feedbacklens/backend/internal/oracle"
	"github.com/feedbacklens/backend/internal/storage/sqlite"
	"github.com/feedbacklens/backend/internal/translation"
	"github.com/feedbacklens/backend/pkg/config"
	appLogger "github.com/feedbacklens/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting FeedbackLens API Server")

	metrics.Init()

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var translationCache translation.Cache
	if cfg.Redis.Enabled {
		redisClient, err := cacheredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, translation caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			translationCache = redisClient
		}
	}

	oracleClient, err := oracle.NewClient(
		cfg.Oracle.APIKey,
		cfg.Oracle.Model,
		cfg.Oracle.Temperature,
		cfg.Oracle.MaxTokens,
		cfg.Oracle.TimeoutSec,
	)
	if err != nil {
		appLogger.Fatal("Failed to create analysis oracle client", zap.Error(err))
	}

	translator := translation.NewGateway(
		cfg.Translation.APIKey,
		cfg.Translation.Model,
		cfg.Translation.TimeoutSec,
		translationCache,
		time.Duration(cfg.Translation.CacheTTLMin)*time.Minute,
	)

	orchestrator := analysis.NewOrchestrator(
		oracleClient,
		translator,
		cfg.Analysis.RetryAttempts,
		time.Duration(cfg.Analysis.RetryBaseMillis)*time.Millisecond,
	)
	runner := analysis.NewRunner(orchestrator, store, cfg.Analysis.MaxBatchSize)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 120,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Org-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		MaxBatchSize: cfg.Analysis.MaxBatchSize,
		Logger:       appLogger.Log,
	}))

	analysisHandler := handlers.NewAnalysisHandler(runner, store)
	translationHandler := handlers.NewTranslationHandler(translator, store)
	dashboardHandler := handlers.NewDashboardHandler(store)
	feedbackHandler := handlers.NewFeedbackHandler(store)
	wsHandler := handlers.NewWebSocketHandler(runner)

	api := app.Group("/api/v1")

	api.Post("/feedback", feedbackHandler.HandleCreateFeedback)
	api.Get("/feedback/:id", feedbackHandler.HandleGetFeedback)

	api.Post("/analyze", analysisHandler.HandleAnalyze)
	api.Post("/analyze/bulk", analysisHandler.HandleBulkAnalyze)
	api.Get("/analyze/:feedbackID", analysisHandler.HandleGetAnalysis)
	api.Delete("/analyze/:feedbackID", analysisHandler.HandleDeleteAnalysis)

	api.Post("/translate", translationHandler.HandleTranslate)

	api.Get("/dashboard/sentiment", dashboardHandler.HandleSentimentDistribution)

	api.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/batch", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":                 "ready",
			"translation_configured": translator.IsConfigured(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
