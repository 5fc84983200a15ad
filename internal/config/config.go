// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"secretsecretsecretsecretsecretse",
}

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env        string `env:"OCOURSE_ENV" envDefault:"development"`
	ServerHost string `env:"OCOURSE_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"OCOURSE_SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"OCOURSE_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"OCOURSE_LOG_FORMAT" envDefault:"text"`

	// Database
	DBDriver string `env:"OCOURSE_DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"OCOURSE_DB_DSN" envDefault:"./data/ocourse.db"`

	// Credentials
	JWTSecret   string        `env:"OCOURSE_JWT_SECRET,required"`
	JWTTTL      time.Duration `env:"OCOURSE_JWT_TTL" envDefault:"720h"`
	JWTIssuer   string        `env:"OCOURSE_JWT_ISSUER" envDefault:"ocourse"`
	TokenHeader string        `env:"OCOURSE_TOKEN_HEADER" envDefault:"token"`
	AdminRole   int           `env:"OCOURSE_ADMIN_ROLE" envDefault:"100"`

	// Optional Redis URL for sharing login lockout counters between instances
	RedisURL    string `env:"OCOURSE_REDIS_URL"`
	RedisPrefix string `env:"OCOURSE_REDIS_PREFIX" envDefault:"ocourse:"`

	RequestTimeout time.Duration `env:"OCOURSE_REQUEST_TIMEOUT" envDefault:"30s"`

	// Audit log retention; zero keeps events forever
	EventRetention time.Duration `env:"OCOURSE_EVENT_RETENTION" envDefault:"2160h"`
	PruneSchedule  string        `env:"OCOURSE_PRUNE_SCHEDULE" envDefault:"0 3 * * *"`
	RateLimit      int           `env:"OCOURSE_RATE_LIMIT" envDefault:"600"` // requests per minute per IP

	// Seeding configuration
	DoSeed        bool   `env:"OCOURSE_DO_SEED" envDefault:"false"`
	AdminEmail    string `env:"OCOURSE_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminUsername string `env:"OCOURSE_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"OCOURSE_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if a Redis URL is configured.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinJWTSecretLength is the minimum length for the HS256 signing secret.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("OCOURSE_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("OCOURSE_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(c.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.JWTSecret == weak {
			return errors.New("OCOURSE_JWT_SECRET is a known default value and must not be used")
		}
	}

	switch c.DBDriver {
	case DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("OCOURSE_DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverMySQL, c.DBDriver)
	}

	if strings.TrimSpace(c.TokenHeader) == "" {
		return errors.New("OCOURSE_TOKEN_HEADER must not be empty")
	}
	if c.EventRetention < 0 {
		return errors.New("OCOURSE_EVENT_RETENTION must not be negative")
	}
	if c.JWTTTL <= 0 {
		return errors.New("OCOURSE_JWT_TTL must be positive")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
