// Copyright (c) 2026 Postify. All rights reserved.

// Package migration runs SQL schema migrations against the remote user
// directory at startup.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrateLogger adapts slog to the migrate.Logger interface.
type migrateLogger struct {
	logger *slog.Logger
}

func (adapter *migrateLogger) Printf(format string, args ...interface{}) {
	adapter.logger.Info("migration_progress",
		slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))),
	)
}

func (adapter *migrateLogger) Verbose() bool {
	return false
}

/*
RunUp applies all pending up migrations.

# Parameters
  - databaseURL: standard postgres:// connection string
  - sourcePath: file:// URL of the migrations directory
  - logger: structured logger for migration events

Returns:
  - error: if the migration source or database is unreachable, or a migration fails

Description:

	A no-change run (schema already current) is not an error. The runner uses
	a dedicated connection independent of the application pool, closed before
	returning.
*/
func RunUp(databaseURL, sourcePath string, logger *slog.Logger) error {

	// 1. The pgx/v5 database driver registers under the "pgx5" scheme
	migrationURL := convertToPgx5DSN(databaseURL)

	// 2. Build the migrator
	migrator, err := migrate.New(sourcePath, migrationURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	migrator.Log = &migrateLogger{logger: logger}

	defer func() {
		sourceErr, dbErr := migrator.Close()
		if sourceErr != nil {
			logger.Warn("migration_source_close_failed", slog.String("error", sourceErr.Error()))
		}
		if dbErr != nil {
			logger.Warn("migration_db_close_failed", slog.String("error", dbErr.Error()))
		}
	}()

	// 3. Apply everything pending
	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_no_change")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	logger.Info("migration_applied")
	return nil
}

// convertToPgx5DSN rewrites a postgres:// URL to the pgx5:// scheme expected
// by the migrate pgx/v5 driver.
func convertToPgx5DSN(databaseURL string) string {
	if after, found := strings.CutPrefix(databaseURL, "postgresql://"); found {
		return "pgx5://" + after
	}
	if after, found := strings.CutPrefix(databaseURL, "postgres://"); found {
		return "pgx5://" + after
	}
	return databaseURL
}
