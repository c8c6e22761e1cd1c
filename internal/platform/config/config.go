// Copyright (c) 2026 Postify. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (stores, token engine) via constructors.
  - Zero Hidden State: No global variables are used to store config.

The provider switch decision (local engine vs. remote backend) is derived from
this configuration exactly once at startup.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Postify identity server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// DataDir is the directory backing the durable local key-value store
	// (users, session, refresh token, posts) when running in local mode.
	DataDir string `env:"DATA_DIR" envDefault:"./data/local"`

	// JWTSecret signs local-mode tokens. The default matches the browser
	// build of Postify so recorded token fixtures stay verifiable.
	JWTSecret string `env:"JWT_SECRET" envDefault:"postify_jwt_secret_key_2024"`

	// Remote backend (optional). When both URLs are present and not
	// placeholders, the server runs against Postgres + Redis instead of the
	// local store.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RemoteConfigured reports whether a usable remote backend is configured.
//
// A connection string that is empty or still contains a template placeholder
// ("your-project", "placeholder") does not count — the server then falls back
// to the local engine, mirroring the provider check of the browser build.
func (c *Config) RemoteConfigured() bool {
	return usableURL(c.DatabaseURL) && usableURL(c.RedisURL)
}

// usableURL rejects empty and obviously-templated connection strings.
func usableURL(url string) bool {
	if url == "" {
		return false
	}
	if strings.Contains(url, "your-project") || strings.Contains(url, "placeholder") {
		return false
	}
	return true
}
