// Copyright (c) 2026 Postify. All rights reserved.

package auth

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/postify/identity/internal/platform/config"
	"github.com/postify/identity/internal/platform/constants"
	"github.com/postify/identity/internal/platform/kvstore"
	"github.com/postify/identity/internal/platform/sec"
	"github.com/postify/identity/internal/token"
	"github.com/postify/identity/pkg/pagination"
)

// # Provider

// Provider is the complete identity surface consumed by the HTTP layer.
//
// The choice between the local engine and the remote backend is made exactly
// once, at startup, by constructing one provider or the other; nothing
// downstream ever re-checks which mode is active. Both constructors return
// the same [*Service] wired with different stores and token engines, so the
// interface is a compile-time guarantee that the two modes stay equivalent.
type Provider interface {
	// Bootstrap
	EnsureAdmin(ctx context.Context) error

	// Accounts & sessions
	Register(ctx context.Context, input RegisterInput) (*User, *Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	LoginWithOAuth(ctx context.Context, provider string) (*Session, error)
	Logout(ctx context.Context) error
	GetSession(ctx context.Context) (*Session, error)
	GetCurrentUser(ctx context.Context) (*User, error)
	OnAuthStateChange(ctx context.Context, callback Callback) (unsubscribe func())
	VerifyToken(tokenString string) (*sec.AuthClaims, error)

	// Profiles & passwords
	GetProfile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error)
	ResetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID, newPassword string) error

	// Administration
	ListUsers(ctx context.Context, actorID string, params pagination.Params) ([]User, pagination.Meta, error)
	UpdateUserRole(ctx context.Context, actorID, targetID string, role sec.UserRole) (*User, error)
	DeleteUser(ctx context.Context, actorID, targetID string) error
	GetDashboardStats(ctx context.Context, actorID string) (*DashboardStats, error)
}

// Interface guard.
var _ Provider = (*Service)(nil)

// # Constructors

/*
NewLocalProvider wires the identity engine for local mode.

Stack: durable file-backed key-value store, legacy compact-token engine, and
the legacy password digest — everything needed to interoperate with state
persisted by the browser build of Postify.
*/
func NewLocalProvider(
	cfg *config.Config,
	store kvstore.Store,
	events *Broadcaster,
	logger *slog.Logger,
	options ...ServiceOption,
) *Service {
	return NewService(
		NewKVUserDirectory(store, logger),
		NewKVSessionStore(store, logger),
		token.NewService(cfg.JWTSecret),
		sec.LegacyHasher{},
		events,
		logger,
		options...,
	)
}

/*
NewRemoteProvider wires the identity engine for remote mode.

Stack: PostgreSQL user directory, Redis session store, HMAC-SHA256 JWT
engine, and bcrypt password hashing. The session lifecycle is byte-for-byte
the same as local mode; only the infrastructure underneath changes.
*/
func NewRemoteProvider(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
	events *Broadcaster,
	logger *slog.Logger,
	options ...ServiceOption,
) *Service {
	return NewService(
		NewPostgresUserDirectory(pool),
		NewRedisSessionStore(redisClient, logger),
		token.NewJWTEngine(cfg.JWTSecret, constants.AppName),
		sec.BcryptHasher{},
		events,
		logger,
		options...,
	)
}
