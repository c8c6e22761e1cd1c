// Copyright (c) 2026 Postify. All rights reserved.

// Package redis manages the Redis client used by the remote session store.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

/*
NewClient creates and verifies a Redis client.

# Parameters
  - ctx: lifetime of the connection attempt
  - redisURL: standard redis:// connection string
  - logger: structured logger for connection lifecycle events

Returns:
  - *goredis.Client: a verified, ready-to-use client
  - error: if the URL is invalid or the server is unreachable
*/
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*goredis.Client, error) {

	// 1. Parse the connection string
	options, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	// 2. Client tuning for a session-store workload
	options.PoolSize = 10
	options.MinIdleConns = 2
	options.DialTimeout = 5 * time.Second
	options.ReadTimeout = 3 * time.Second
	options.WriteTimeout = 3 * time.Second

	client := goredis.NewClient(options)

	// 3. Verify connectivity before handing the client to callers
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.InfoContext(ctx, "redis_client_ready",
		slog.String("addr", options.Addr),
	)

	return client, nil
}
