package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"github.com/kairosjournal/kairos-backend/internal/account"
	"github.com/kairosjournal/kairos-backend/internal/ai"
	"github.com/kairosjournal/kairos-backend/internal/billing"
	"github.com/kairosjournal/kairos-backend/internal/config"
	"github.com/kairosjournal/kairos-backend/internal/database"
	"github.com/kairosjournal/kairos-backend/internal/entries"
	"github.com/kairosjournal/kairos-backend/internal/handlers"
	"github.com/kairosjournal/kairos-backend/internal/logging"
	"github.com/kairosjournal/kairos-backend/internal/middleware"
	"github.com/kairosjournal/kairos-backend/internal/patterns"
	"github.com/kairosjournal/kairos-backend/internal/routes"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}
	if cfg.AIAPIKey == "" {
		slog.Warn("AI_API_KEY is not set; pattern generation will fail")
	}
	if cfg.StripeSecretKey == "" {
		slog.Warn("STRIPE_SECRET_KEY is not set; billing endpoints will fail")
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Services
	entryService := entries.NewService(database.DB)
	patternStore := patterns.NewStore(database.DB)
	aiClient := ai.NewClient(cfg.AIAPIURL, cfg.AIAPIKey)
	generator := patterns.NewGenerator(entryService, patternStore, aiClient, patterns.GeneratorConfig{
		PrimaryModel:   cfg.AIPrimaryModel,
		FallbackModel:  cfg.AIFallbackModel,
		PrimaryTimeout: cfg.AIPrimaryTimeout,
		MaxTokens:      cfg.AIMaxTokens,
		Temperature:    cfg.AITemperature,
	})

	profileStore := billing.NewProfileStore(database.DB)
	stripeProvider := billing.NewStripeProvider(cfg)
	subscriptionService := billing.NewSubscriptionService(profileStore, stripeProvider)
	accountService := account.NewService(entryService, patternStore, profileStore, stripeProvider)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	entryHandler := entries.NewHandler(entryService)
	patternHandler := patterns.NewHandler(generator, patternStore, entryService, subscriptionService)
	billingHandler := billing.NewHandler(subscriptionService)
	accountHandler := account.NewHandler(accountService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, healthHandler, entryHandler, patternHandler, billingHandler, accountHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
