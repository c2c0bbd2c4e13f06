// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

// Command api is the entry point for the Kontakt HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Connect optional infrastructure (AMQP mail broker, S3 avatar bucket).
//  7. Wire HTTP handlers.
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

	"github.com/kontaktapp/kontakt/internal/api"
	"github.com/kontaktapp/kontakt/internal/contacts"
	"github.com/kontaktapp/kontakt/internal/notify"
	"github.com/kontaktapp/kontakt/internal/platform/config"
	"github.com/kontaktapp/kontakt/internal/platform/constants"
	"github.com/kontaktapp/kontakt/internal/platform/migration"
	pgstore "github.com/kontaktapp/kontakt/internal/platform/postgres"
	redisstore "github.com/kontaktapp/kontakt/internal/platform/redis"
	"github.com/kontaktapp/kontakt/internal/platform/sec"
	"github.com/kontaktapp/kontakt/internal/storage"
	"github.com/kontaktapp/kontakt/internal/users/auth"
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

	log.Info("[Kontakt] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
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

	// ── 6. Optional Infrastructure ────────────────────────────────────────
	// Mail broker: AMQP when configured, structured log otherwise.
	var mailer notify.Scheduler
	if cfg.AMQPURL != "" {
		amqpScheduler, err := notify.NewAMQPScheduler(cfg.AMQPURL, cfg.MailExchange, log)
		must(log, err, "connect to mail broker")
		defer func() {
			if cerr := amqpScheduler.Close(); cerr != nil {
				log.Error("amqp close error", slog.Any("error", cerr))
			}
		}()
		mailer = amqpScheduler
	} else {
		log.Warn("mail_broker_disabled_using_log_fallback")
		mailer = notify.NewLogScheduler(log)
	}

	// Avatar bucket: optional. Uploads fail cleanly when absent.
	var avatars storage.AvatarStore
	if cfg.S3Bucket != "" {
		avatars, err = storage.NewS3Store(startupCtx, storage.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			BaseEndpoint:    cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		})
		must(log, err, "initialize avatar storage")
	} else {
		log.Warn("avatar_storage_disabled")
	}

	// ── 7. Security Primitives ────────────────────────────────────────────
	tokens := sec.NewTokenService(
		cfg.JWTSecret,
		constants.AuthIssuer,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		cfg.EmailTokenTTL,
	)
	hasher := sec.NewHasher(cfg.BcryptCost)

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	authService := auth.NewService(userRepository, tokens, hasher, mailer, avatars, cfg.BaseURL, log)
	authHandler := auth.NewHandler(authService)

	contactRepository := contacts.NewPostgresRepository(pool)
	contactService := contacts.NewService(contactRepository, log)
	contactHandler := contacts.NewHandler(contactService)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Contacts:  contactHandler,
	}

	// The server gets a process-lifetime context; the rate limiter's cleanup
	// goroutine must outlive the 30s startup deadline.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, authService, rdb, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
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
