// Copyright (c) 2026 Postify. All rights reserved.

// Command authd runs the Postify identity server.
//
// It selects the backing infrastructure exactly once at startup: when a
// usable DATABASE_URL and REDIS_URL are configured the server runs in remote
// mode (PostgreSQL + Redis + HMAC JWTs), otherwise it runs in local mode
// (durable file store + the legacy token engine of the browser build).
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/postify/identity/internal/api"
	"github.com/postify/identity/internal/auth"
	"github.com/postify/identity/internal/content"
	"github.com/postify/identity/internal/platform/config"
	"github.com/postify/identity/internal/platform/constants"
	"github.com/postify/identity/internal/platform/kvstore"
	"github.com/postify/identity/internal/platform/migration"
	"github.com/postify/identity/internal/platform/postgres"
	"github.com/postify/identity/internal/platform/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Configuration
	cfg := must(config.Load())

	// 2. Structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting",
		slog.String("app", constants.AppName),
		slog.String("version", constants.AppVersion),
		slog.String("environment", cfg.Environment),
	)

	// 3. Post catalogue. Content always lives in the durable local store;
	// only identity state moves to Postgres/Redis in remote mode.
	store := must(kvstore.NewFile(cfg.DataDir))
	contentService := content.NewService(content.NewKVStore(store, logger), logger)

	// 4. Provider selection: decided once, never re-checked.
	events := auth.NewBroadcaster()
	health := &api.HealthDependencies{}

	var provider auth.Provider

	if cfg.RemoteConfigured() {
		logger.Info("provider_selected", slog.String("mode", "remote"))

		// 4a. Schema migrations before the pool opens for business.
		if err := migration.RunUp(cfg.DatabaseURL, "file://"+cfg.MigrationPath, logger); err != nil {
			fatal(logger, "migrations failed", err)
		}

		pool := must(postgres.NewPool(ctx, cfg.DatabaseURL, logger))
		defer pool.Close()

		redisClient := must(redis.NewClient(ctx, cfg.RedisURL, logger))
		defer redisClient.Close()

		health.Postgres = pool
		health.Redis = redisClient

		provider = auth.NewRemoteProvider(cfg, pool, redisClient, events, logger,
			auth.WithPostCounter(contentService),
		)
	} else {
		logger.Info("provider_selected", slog.String("mode", "local"),
			slog.String("data_dir", cfg.DataDir),
		)

		provider = auth.NewLocalProvider(cfg, store, events, logger,
			auth.WithPostCounter(contentService),
		)
	}

	// 5. Guaranteed admin account, explicit and idempotent.
	if err := provider.EnsureAdmin(ctx); err != nil {
		fatal(logger, "admin bootstrap failed", err)
	}

	// 6. Audit trail for auth state transitions.
	unsubscribe := provider.OnAuthStateChange(ctx, func(event auth.Event, session *auth.Session) {
		attrs := []any{slog.String("event", string(event))}
		if session != nil {
			attrs = append(attrs, slog.String("user_id", session.User.ID))
		}
		logger.Info("auth_state_changed", attrs...)
	})
	defer unsubscribe()

	// 7. HTTP server
	server := api.NewServer(ctx, cfg, api.Handlers{
		Auth:     auth.NewHandler(provider),
		Content:  content.NewHandler(contentService),
		Verifier: provider,
		Health:   health,
	}, logger)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	// 8. Wait for shutdown signal or server failure.
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server failed", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown_signal_received")
		if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
			fatal(logger, "graceful shutdown failed", err)
		}
	}

	logger.Info("stopped")
}

// must exits the process on unrecoverable startup errors.
func must[T any](value T, err error) T {
	if err != nil {
		slog.Error("startup_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return value
}

func fatal(logger *slog.Logger, message string, err error) {
	logger.Error("fatal",
		slog.String("message", message),
		slog.String("error", err.Error()),
	)
	os.Exit(1)
}
