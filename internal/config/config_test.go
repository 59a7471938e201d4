// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(Env{})
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "authentication_system", cfg.DBName)
	assert.Equal(t, "postgres", cfg.DBUser)
	assert.Empty(t, cfg.DBPass)
	assert.Empty(t, cfg.SecurityPepper)
	assert.Equal(t, 86400, cfg.SessionLifetime)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.True(t, bool(cfg.SessionSecure))
	assert.Equal(t, "production", cfg.AppEnv)
	assert.False(t, cfg.Debug())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, StorePostgres, cfg.SessionStore)
	assert.Equal(t, "localhost:8080", cfg.ServerAddr())
	assert.Equal(t, "/login", cfg.LoginURL)
}

func TestFromEnv_CustomValues(t *testing.T) {
	cfg, err := FromEnv(Env{
		"DB_HOST":          "db.internal",
		"DB_NAME":          "auth",
		"DB_USER":          "app",
		"DB_PASS":          "s3cret",
		"SECURITY_PEPPER":  "pepper",
		"SESSION_LIFETIME": "3600",
		"SESSION_SECURE":   "false",
		"APP_ENV":          "development",
		"APP_DEBUG":        "true",
		"SESSION_STORE":    "memory",
		"SERVER_PORT":      "9000",
	})
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "auth", cfg.DBName)
	assert.Equal(t, "app", cfg.DBUser)
	assert.Equal(t, "s3cret", cfg.DBPass)
	assert.Equal(t, "pepper", cfg.SecurityPepper)
	assert.Equal(t, time.Hour, cfg.SessionTTL())
	assert.False(t, bool(cfg.SessionSecure))
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.Debug())
	assert.Equal(t, StoreMemory, cfg.SessionStore)
	assert.Equal(t, "localhost:9000", cfg.ServerAddr())
}

func TestFlag_OnlyExactTrue(t *testing.T) {
	tests := map[string]bool{
		"true":  true,
		"TRUE":  false,
		"1":     false,
		"yes":   false,
		"false": false,
		"":      false,
	}
	for input, want := range tests {
		cfg, err := FromEnv(Env{"APP_DEBUG": input})
		require.NoError(t, err, "APP_DEBUG=%q", input)
		assert.Equal(t, want, cfg.Debug(), "APP_DEBUG=%q", input)
	}
}

func TestFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     Env
		wantErr error
	}{
		{"zero lifetime", Env{"SESSION_LIFETIME": "0"}, nil},
		{"non-numeric lifetime", Env{"SESSION_LIFETIME": "day"}, nil},
		{"unknown store", Env{"SESSION_STORE": "files"}, ErrUnknownSessionStore},
		{"redis without url", Env{"SESSION_STORE": "redis"}, ErrRedisURLRequired},
		{"bad log level", Env{"LOG_LEVEL": "verbose"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(tt.env)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromEnv_RedisWithURL(t *testing.T) {
	cfg, err := FromEnv(Env{"SESSION_STORE": "redis", "REDIS_URL": "redis://localhost:6379/0"})
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.SessionStore)
	assert.Equal(t, "authsys:session:", cfg.RedisPrefix)
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("DB_NAME", "")
	t.Setenv("APP_DEBUG", "")
	path := writeEnvFile(t, "# database\nDB_NAME=\"from_file\"\nAPP_DEBUG=true\nSESSION_STORE=memory\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.DBName)
	assert.True(t, cfg.Debug())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SESSION_STORE", "memory")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.SessionStore)
	assert.Equal(t, 86400, cfg.SessionLifetime)
}

func TestFromEnv_EmptyValuesFallBackToDefaults(t *testing.T) {
	cfg, err := FromEnv(Env{
		"SESSION_SECURE":   "",
		"SESSION_LIFETIME": "",
		"SESSION_STORE":    "memory",
	})
	require.NoError(t, err)

	// Set-but-empty keeps the secure cookie default.
	assert.True(t, bool(cfg.SessionSecure))
	assert.Equal(t, 86400, cfg.SessionLifetime)

	// Env.Lookup still reports the empty value.
	assert.Equal(t, "", Env{"SESSION_SECURE": ""}.Lookup("SESSION_SECURE", "true"))
}
