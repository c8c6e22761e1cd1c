// Copyright (c) 2026 Postify. All rights reserved.

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/postify/identity/internal/platform/constants"
	"github.com/postify/identity/internal/platform/respond"
)

// HealthDependencies holds the probes behind the readiness endpoint.
// Nil members are skipped, so local mode (no Postgres, no Redis) reports
// ready on the strength of the process alone.
type HealthDependencies struct {
	Postgres *pgxpool.Pool
	Redis    *goredis.Client
}

// Liveness reports that the process is up. No dependency checks.
func (health *HealthDependencies) Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.JSON(writer, http.StatusOK, map[string]string{
		constants.FieldStatus: "ok",
		"version":             constants.AppVersion,
	})
}

// Readiness reports whether every configured dependency answers a ping.
func (health *HealthDependencies) Readiness(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	if health.Postgres != nil {
		if err := health.Postgres.Ping(ctx); err != nil {
			checks["postgres"] = "unreachable"
			ready = false
		} else {
			checks["postgres"] = "ok"
		}
	}

	if health.Redis != nil {
		if err := health.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unreachable"
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	statusLabel := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		statusLabel = "degraded"
	}

	respond.JSON(writer, status, map[string]interface{}{
		constants.FieldStatus: statusLabel,
		"checks":              checks,
	})
}
