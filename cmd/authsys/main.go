// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/deez-automations/authsys/internal/config"
	"github.com/deez-automations/authsys/internal/database"
	"github.com/deez-automations/authsys/internal/guard"
	"github.com/deez-automations/authsys/internal/handler"
	"github.com/deez-automations/authsys/internal/logging"
	"github.com/deez-automations/authsys/internal/middleware"
	"github.com/deez-automations/authsys/internal/session"
	"github.com/deez-automations/authsys/internal/version"
	"github.com/deez-automations/authsys/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// localEnvFile overrides the main env file in development.
const localEnvFile = ".env.local"

func main() {
	// Parse CLI flags
	envFile := flag.String("env", config.DefaultEnvFile, "Path to the env file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "authsys - session gate for the authentication system\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DB_HOST, DB_PORT, DB_NAME   PostgreSQL location (default: localhost:5432/authentication_system)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DB_USER, DB_PASS            PostgreSQL credentials (default user: postgres)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SECURITY_PEPPER             Password pepper (warned about when unset)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SESSION_LIFETIME            Session lifetime in seconds (default: 86400)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SESSION_SECURE              HTTPS-only session cookie unless exactly \"false\" (default: true)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SESSION_STORE               memory|postgres|sqlite|redis (default: postgres)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_ENV                     development|production (default: production)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_DEBUG                   Show connection errors to clients when \"true\"\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SERVER_HOST, SERVER_PORT    Listen address (default: localhost:8080)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(*envFile, versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(envFile string, versionInfo version.Info) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Local overrides (development)
	if cfg.IsDevelopment() {
		if err := godotenv.Overload(localEnvFile); err == nil {
			if cfg, err = config.FromEnv(config.ProcessEnv()); err != nil {
				return fmt.Errorf("loading config overrides: %w", err)
			}
			slog.Info("local env overrides applied", "file", localEnvFile)
		}
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if cfg.Debug() {
		logLevel = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	// Warnings and errors are also kept in the error log file
	errorLog, err := logging.OpenErrorLog(cfg.ErrorLogPath)
	if err != nil {
		slog.Warn("error log unavailable, logging to stdout only", "error", err)
	} else {
		defer func() { _ = errorLog.Close() }()
		slog.SetDefault(slog.New(logging.NewErrorFileHandler(textHandler, errorLog, middleware.GetRequestPath)))
		slog.Info("error log enabled", "path", cfg.ErrorLogPath, "min_level", "warn")
	}

	ctx := context.Background()

	// Initialize database pool
	slog.Info("connecting to database", "host", cfg.DBHost, "port", cfg.DBPort, "database", cfg.DBName)
	pool, err := database.ConnectPool(ctx, cfg)
	if err != nil {
		if cfg.SessionStore == config.StorePostgres {
			return fmt.Errorf("initializing database: %w", err)
		}
		slog.Warn("continuing without database pool", "session_store", cfg.SessionStore)
	}
	if pool != nil {
		defer pool.Close()

		slog.Info("running database migrations")
		if err := database.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database ready")
	}

	// Initialize session manager
	store, err := session.NewStore(ctx, cfg, pool)
	if err != nil {
		return fmt.Errorf("initializing session store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("error closing session store", "error", err)
		}
	}()
	sessionManager := session.New(cfg, store.Store)
	slog.Info("session manager initialized", "store", store, "lifetime", cfg.SessionTTL(), "secure", bool(cfg.SessionSecure))

	g := guard.New(sessionManager, cfg.LoginURL)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := handler.NewRenderer(templatesFS)
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	authRateLimiter := middleware.NewRateLimiter(5, 10)
	defer authRateLimiter.Stop()

	r := newRouter(routerDeps{
		cfg:         cfg,
		sm:          sessionManager,
		guard:       g,
		auth:        handler.NewAuthHandler(g, renderer),
		health:      handler.NewHealthHandler(cfg, healthPool(pool), versionInfo.Version),
		rateLimiter: authRateLimiter,
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.AppEnv, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// healthPool avoids handing the health handler a typed nil.
func healthPool(pool *pgxpool.Pool) handler.Pool {
	if pool == nil {
		return nil
	}
	return pool
}
