// Copyright (c) 2026 Postify. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/postify/identity/internal/platform/constants"
	"github.com/postify/identity/internal/token"
)

// # Remote Session Store

// RedisSessionStore implements [SessionStore] over Redis. Used in remote mode.
//
// Keys carry a TTL matching the refresh token lifetime, so abandoned sessions
// expire server-side instead of accumulating.
type RedisSessionStore struct {
	client *goredis.Client
	logger *slog.Logger

	// scope distinguishes deployments sharing one Redis. "default" unless
	// multi-tenant.
	scope string
}

// NewRedisSessionStore builds a session store over the given client.
func NewRedisSessionStore(client *goredis.Client, logger *slog.Logger) *RedisSessionStore {
	return &RedisSessionStore{client: client, logger: logger, scope: "default"}
}

func (sessions *RedisSessionStore) sessionKey() string {
	return constants.RedisPrefixSession + sessions.scope
}

func (sessions *RedisSessionStore) refreshKey() string {
	return constants.RedisPrefixRefreshToken + sessions.scope
}

// Load returns the stored session, or (nil, nil) if absent or corrupt.
func (sessions *RedisSessionStore) Load(ctx context.Context) (*Session, error) {
	raw, err := sessions.client.Get(ctx, sessions.sessionKey()).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		sessions.logger.WarnContext(ctx, "session_corrupt_discarded",
			slog.String("key", sessions.sessionKey()),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	return &session, nil
}

// Save persists the session. A nil session removes any stored one.
func (sessions *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	if session == nil {
		if err := sessions.client.Del(ctx, sessions.sessionKey()).Err(); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := sessions.client.Set(ctx, sessions.sessionKey(), raw, token.RefreshTokenTTL).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadRefreshToken returns the stored refresh token, or "" if absent.
func (sessions *RedisSessionStore) LoadRefreshToken(ctx context.Context) (string, error) {
	value, err := sessions.client.Get(ctx, sessions.refreshKey()).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("load refresh token: %w", err)
	}
	return value, nil
}

// SaveRefreshToken persists the refresh token. An empty value removes it.
func (sessions *RedisSessionStore) SaveRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		if err := sessions.client.Del(ctx, sessions.refreshKey()).Err(); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}
		return nil
	}

	if err := sessions.client.Set(ctx, sessions.refreshKey(), refreshToken, token.RefreshTokenTTL).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}
