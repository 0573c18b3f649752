// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

// Command api is the entry point for the NeverBeen HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Open the thumbnail file store.
//  7. Wire domain services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/neverbeen/api/internal/api"
	"github.com/neverbeen/api/internal/places/place"
	"github.com/neverbeen/api/internal/places/rating"
	"github.com/neverbeen/api/internal/places/thumbnail"
	"github.com/neverbeen/api/internal/platform/config"
	"github.com/neverbeen/api/internal/platform/constants"
	"github.com/neverbeen/api/internal/platform/filestore"
	"github.com/neverbeen/api/internal/platform/mail"
	"github.com/neverbeen/api/internal/platform/migration"
	pgstore "github.com/neverbeen/api/internal/platform/postgres"
	redisstore "github.com/neverbeen/api/internal/platform/redis"
	"github.com/neverbeen/api/internal/users/account"
	"github.com/neverbeen/api/internal/users/auth"
	"github.com/neverbeen/api/internal/users/token"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[NeverBeen] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A local .env is a development convenience; its absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lifetime context for long-lived background routines (rate limiter GC).
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. File Store ─────────────────────────────────────────────────────
	files, err := filestore.NewDisk(cfg.StaticDir)
	must(log, err, "open thumbnail file store")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	mailer := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, log)

	userRepository := auth.NewUserRepository(pool)
	tokenService := token.NewService(token.NewRepository(pool), userRepository)
	authService := auth.NewService(userRepository, tokenService, mailer, cfg.PublicBaseURL)
	authHandler := auth.NewHandler(authService)

	placeRepository := place.NewRepository(pool)
	ratingRepository := rating.NewRepository(pool)
	thumbnailRepository := thumbnail.NewRepository(pool)
	placeCache := place.NewCache(rdb)

	placeService := place.NewService(placeRepository, ratingRepository, thumbnailRepository, files, placeCache)
	placeHandler := place.NewHandler(placeService)

	ratingService := rating.NewService(ratingRepository, placeRepository, placeCache)
	ratingHandler := rating.NewHandler(ratingService)

	thumbnailService := thumbnail.NewService(thumbnailRepository, placeRepository, files, placeCache, cfg.PublicBaseURL)
	thumbnailHandler := thumbnail.NewHandler(thumbnailService)

	// Account deletion purges the deleted user's thumbnail files via the
	// place service before the row delete cascades.
	accountService := account.NewService(account.NewRepository(pool), placeService)
	accountHandler := account.NewHandler(accountService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Account:   accountHandler,
		Place:     placeHandler,
		Rating:    ratingHandler,
		Thumbnail: thumbnailHandler,
	}

	server := api.NewServer(appCtx, cfg, log, tokenService, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
