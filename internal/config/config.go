// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from an env file and the
// process environment into an explicit Config value.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

// Session store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

var (
	// ErrUnknownSessionStore is returned when SESSION_STORE names no known backend.
	ErrUnknownSessionStore = errors.New("unknown session store")
	// ErrRedisURLRequired is returned when the redis store is selected without REDIS_URL.
	ErrRedisURLRequired = errors.New("REDIS_URL is required for the redis session store")
)

var sessionStores = []string{StoreMemory, StorePostgres, StoreSQLite, StoreRedis}

var logLevels = []string{"debug", "info", "warn", "error"}

// Flag is a boolean setting that is true only for the exact text "true".
type Flag bool

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Flag) UnmarshalText(text []byte) error {
	*f = string(text) == "true"
	return nil
}

// Config holds the application configuration.
type Config struct {
	// Database
	DBHost           string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort           int           `env:"DB_PORT" envDefault:"5432"`
	DBName           string        `env:"DB_NAME" envDefault:"authentication_system"`
	DBUser           string        `env:"DB_USER" envDefault:"postgres"`
	DBPass           string        `env:"DB_PASS"`
	DBSSLMode        string        `env:"DB_SSLMODE" envDefault:"prefer"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"10"`

	// Security
	SecurityPepper string `env:"SECURITY_PEPPER"`

	// Session
	SessionLifetime int    `env:"SESSION_LIFETIME" envDefault:"86400"` // seconds
	SessionSecure   Flag   `env:"SESSION_SECURE" envDefault:"true"`
	SessionStore    string `env:"SESSION_STORE" envDefault:"postgres"`
	SessionDBPath   string `env:"SESSION_DB_PATH" envDefault:"./data/sessions.db"`
	RedisURL        string `env:"REDIS_URL"`
	RedisPrefix     string `env:"REDIS_PREFIX" envDefault:"authsys:session:"`

	// Application
	AppEnv       string `env:"APP_ENV" envDefault:"production"`
	AppDebug     Flag   `env:"APP_DEBUG" envDefault:"false"`
	ServerHost   string `env:"SERVER_HOST" envDefault:"localhost"`
	ServerPort   int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	ErrorLogPath string `env:"ERROR_LOG_PATH" envDefault:"./logs/errors.log"`
	LoginURL     string `env:"LOGIN_URL" envDefault:"/login"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Debug reports whether detailed errors may be shown to clients.
func (c Config) Debug() bool {
	return bool(c.AppDebug)
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SessionTTL returns the session lifetime as a duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionLifetime) * time.Second
}

// Load reads the env file at path into the process environment and parses
// the result. A missing env file is logged and the defaults apply.
func Load(path string) (*Config, error) {
	if _, err := LoadEnv(path); err != nil {
		if !errors.Is(err, ErrEnvFileNotFound) {
			return nil, err
		}
		slog.Warn("env file not found, using environment and defaults", "error", err)
	}

	return FromEnv(ProcessEnv())
}

// FromEnv parses and validates a Config from the given entries only.
func FromEnv(e Env) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: e}); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.SessionLifetime <= 0 {
		return nil, fmt.Errorf("SESSION_LIFETIME must be positive, got %d", cfg.SessionLifetime)
	}

	if !slices.Contains(sessionStores, cfg.SessionStore) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSessionStore, cfg.SessionStore)
	}

	if cfg.SessionStore == StoreRedis && cfg.RedisURL == "" {
		return nil, ErrRedisURLRequired
	}

	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("LOG_LEVEL must be one of %v, got %q", logLevels, cfg.LogLevel)
	}

	if cfg.SecurityPepper == "" {
		slog.Warn("SECURITY WARNING: SECURITY_PEPPER is not set")
	}

	return cfg, nil
}
