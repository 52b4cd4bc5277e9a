package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/revocation"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("")
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging (JSON to stdout)
	stdoutHandler := logging.Setup(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Blob store
	ctx := context.Background()
	blobs, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("blob store init failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	slog.Info("blob store ready", "driver", cfg.StorageDriver)

	// Access-token revocation list
	var revoker revocation.Revoker = revocation.NewMemoryRevoker()
	var redisRevoker *revocation.RedisRevoker
	if cfg.RedisAddr != "" {
		redisRevoker = revocation.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisRevoker.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		revoker = redisRevoker
	}

	// Services
	authService := services.NewAuthService(database.DB, cfg, revoker)
	directory := services.NewUserDirectory(database.DB)
	messageService := services.NewMessageService(database.DB, directory)
	itemService := services.NewItemService(database.DB, blobs, directory, messageService, cfg.MaxImageBytes)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app; multipart uploads need room for the image plus form fields.
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.MaxImageBytes) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, authService, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Health:  handlers.NewHealthHandler(database.DB),
		Item:    handlers.NewItemHandler(itemService),
		Message: handlers.NewMessageHandler(messageService),
	})

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

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	slog.SetDefault(slog.New(stdoutHandler))
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if closer, ok := blobs.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Error("blob store close error", "error", err)
		}
	}
	if redisRevoker != nil {
		if err := redisRevoker.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
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
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", middleware.RequestID(c),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
