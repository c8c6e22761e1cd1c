// Copyright (c) 2026 Postify. All rights reserved.

// Package postgres manages the PostgreSQL connection pool for the remote
// user directory.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

/*
NewPool creates and verifies a pgx connection pool.

# Parameters
  - ctx: lifetime of the connection attempt
  - databaseURL: standard postgres:// connection string
  - logger: structured logger for connection lifecycle events

Returns:
  - *pgxpool.Pool: a verified, ready-to-use pool
  - error: if the URL is invalid or the database is unreachable

Description:

	The pool is tuned for a small identity service: few long-lived
	connections, aggressive health checks. Every acquired connection gets a
	statement timeout so a stuck query cannot hold the directory hostage.
*/
func NewPool(ctx context.Context, databaseURL string, logger *slog.Logger) (*pgxpool.Pool, error) {

	// 1. Parse the connection string into a pool configuration
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	// 2. Pool tuning
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 15 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// 3. Per-connection setup: cap statement execution time
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET statement_timeout = '5s'")
		return err
	}

	// 4. Establish the pool
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// 5. Verify connectivity before handing the pool to callers
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.InfoContext(ctx, "postgres_pool_ready",
		slog.Int("max_conns", int(poolConfig.MaxConns)),
	)

	return pool, nil
}
