// Copyright (c) 2026 Postify. All rights reserved.

/*
Package api assembles the HTTP server: middleware chain, route mounting, and
lifecycle management.

It owns no business logic. Domain packages register their own routes through
the [Handlers] registry; this package decides the order of the middleware
chain and the shape of the URL space.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/postify/identity/internal/auth"
	"github.com/postify/identity/internal/content"
	"github.com/postify/identity/internal/platform/config"
	"github.com/postify/identity/internal/platform/constants"
	"github.com/postify/identity/internal/platform/middleware"
)

// Handlers is the registry of domain handlers mounted by the server.
type Handlers struct {
	Auth    *auth.Handler
	Content *content.Handler

	// Verifier decodes Bearer tokens for the authentication middleware.
	Verifier middleware.TokenVerifier

	// Health dependency probes (nil-able, checked only when set).
	Health *HealthDependencies
}

// Server wraps the HTTP server with graceful lifecycle management.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

/*
NewServer assembles the full HTTP stack.

Middleware order matters:

 1. RequestID — everything downstream logs with a correlation ID.
 2. StructuredLogger — one line per request.
 3. PanicRecovery — inside the logger so panics are logged with context.
 4. RateLimit — global per-IP bucket.
 5. Timeout — global request deadline.
 6. Authenticate — optional identity, enforced per-route.
*/
func NewServer(ctx context.Context, cfg *config.Config, handlers Handlers, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.PanicRecovery(logger))
	router.Use(middleware.RateLimit(ctx))
	router.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.Authenticate(handlers.Verifier))

	// Health endpoints live outside the versioned API space.
	if handlers.Health != nil {
		router.Get("/healthz", handlers.Health.Liveness)
		router.Get("/readyz", handlers.Health.Readiness)
	}

	loginLimiter := middleware.LoginRateLimit(ctx)

	router.Route("/api/v1", func(apiRouter chi.Router) {
		if handlers.Auth != nil {
			handlers.Auth.RegisterRoutes(apiRouter, loginLimiter)
		}
		if handlers.Content != nil {
			handlers.Content.RegisterRoutes(apiRouter)
		}
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
		},
		logger: logger,
	}
}

// ListenAndServe starts serving. Blocks until the server stops.
func (server *Server) ListenAndServe() error {
	server.logger.Info("http_server_listening",
		slog.String("addr", server.httpServer.Addr),
	)
	return server.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, bounded by the given timeout.
func (server *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	server.logger.Info("http_server_draining")
	return server.httpServer.Shutdown(ctx)
}
