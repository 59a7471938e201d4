// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package database opens PostgreSQL connections from application config.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deez-automations/authsys/internal/config"
)

// DSN builds a keyword/value connection string from cfg.
func DSN(cfg *config.Config) string {
	parts := []string{
		"host=" + quoteDSNValue(cfg.DBHost),
		fmt.Sprintf("port=%d", cfg.DBPort),
		"dbname=" + quoteDSNValue(cfg.DBName),
		"user=" + quoteDSNValue(cfg.DBUser),
		"password=" + quoteDSNValue(cfg.DBPass),
	}
	if cfg.DBSSLMode != "" {
		parts = append(parts, "sslmode="+quoteDSNValue(cfg.DBSSLMode))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue single-quotes v, escaping backslashes and quotes.
func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// applyConnSettings sets the statement settings shared by single connections
// and pools.
func applyConnSettings(cc *pgx.ConnConfig, cfg *config.Config) {
	cc.ConnectTimeout = cfg.DBConnectTimeout
	// Server-side prepared statements; never the simple protocol.
	cc.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
}

// Connect opens a single verified connection. The caller closes it.
// Failures are logged in full and returned as *ConnectError.
func Connect(ctx context.Context, cfg *config.Config) (*pgx.Conn, error) {
	cc, err := pgx.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, connectFailed(ctx, cfg, err)
	}
	applyConnSettings(cc, cfg)

	conn, err := pgx.ConnectConfig(ctx, cc)
	if err != nil {
		return nil, connectFailed(ctx, cfg, err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, connectFailed(ctx, cfg, err)
	}

	return conn, nil
}

// ConnectPool opens a connection pool with the same settings as Connect.
func ConnectPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, connectFailed(ctx, cfg, err)
	}
	applyConnSettings(pc.ConnConfig, cfg)
	if cfg.DBMaxConns > 0 {
		pc.MaxConns = cfg.DBMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, connectFailed(ctx, cfg, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, connectFailed(ctx, cfg, err)
	}

	return pool, nil
}

func connectFailed(ctx context.Context, cfg *config.Config, err error) error {
	ce := &ConnectError{Host: cfg.DBHost, Database: cfg.DBName, Err: err}
	slog.ErrorContext(ctx, "database connection failed",
		"host", ce.Host,
		"database", ce.Database,
		"error", err,
	)
	return ce
}
