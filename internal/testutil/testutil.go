// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for authsys.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// UseDefaultLogger installs l as the slog default for the duration of the test.
func UseDefaultLogger(t *testing.T, l *slog.Logger) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(l)
	t.Cleanup(func() { slog.SetDefault(prev) })
}

// SessionManager returns a session manager on a fresh in-memory store.
// The store is returned so tests can inspect persisted records.
func SessionManager(t *testing.T) (*scs.SessionManager, *memstore.MemStore) {
	t.Helper()
	store := memstore.NewWithCleanupInterval(0)
	sm := scs.New()
	sm.Store = store
	return sm, store
}

// SessionContext returns a context carrying a new, empty session.
func SessionContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	return LoadSession(t, sm, "")
}

// LoadSession returns a context carrying the session stored under token.
func LoadSession(t *testing.T, sm *scs.SessionManager, token string) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), token)
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	return ctx
}

// CommitSession persists the session in ctx and returns its token.
func CommitSession(t *testing.T, sm *scs.SessionManager, ctx context.Context) string {
	t.Helper()
	token, _, err := sm.Commit(ctx)
	if err != nil {
		t.Fatalf("committing session: %v", err)
	}
	return token
}
