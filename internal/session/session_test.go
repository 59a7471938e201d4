// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/deez-automations/authsys/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

func testConfig(t *testing.T, overrides config.Env) *config.Config {
	t.Helper()
	cfg, err := config.FromEnv(config.Env{"SESSION_STORE": config.StoreMemory}.Merge(overrides))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	return cfg
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Each :memory: connection is a separate database.
	db.SetMaxOpenConns(1)

	if err := MigrateSQLite(context.Background(), db); err != nil {
		t.Fatalf("MigrateSQLite: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_SecureMode(t *testing.T) {
	sm := New(testConfig(t, nil), memstore.New())

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true by default")
	}
	if sm.Cookie.Name != SecureCookieName {
		t.Errorf("expected %s cookie name, got %q", SecureCookieName, sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_InsecureMode(t *testing.T) {
	sm := New(testConfig(t, config.Env{"SESSION_SECURE": "false"}), memstore.New())

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false")
	}
	if sm.Cookie.Name == SecureCookieName {
		t.Error("expected default cookie name without Secure")
	}
}

func TestNew_SessionSettings(t *testing.T) {
	sm := New(testConfig(t, config.Env{"SESSION_LIFETIME": "7200"}), memstore.New())

	if sm.Lifetime != 2*time.Hour {
		t.Errorf("Lifetime = %v, want 2h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}
	if sm.Store == nil {
		t.Error("expected Store to be initialized")
	}
}

func TestNew_LoadAndSaveIssuesCookie(t *testing.T) {
	sm := New(testConfig(t, config.Env{"SESSION_SECURE": "false"}), memstore.New())

	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), "user_id", int64(1))
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	if cookies[0].Name != sm.Cookie.Name {
		t.Errorf("cookie name = %q, want %q", cookies[0].Name, sm.Cookie.Name)
	}
	if !cookies[0].HttpOnly {
		t.Error("expected HttpOnly session cookie")
	}
}

func TestNewStore_Memory(t *testing.T) {
	st, err := NewStore(context.Background(), testConfig(t, nil), nil)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	defer func() { _ = st.Close() }()

	if st.Backend != config.StoreMemory {
		t.Errorf("Backend = %q, want %q", st.Backend, config.StoreMemory)
	}
	if _, ok := st.Store.(*memstore.MemStore); !ok {
		t.Errorf("Store = %T, want *memstore.MemStore", st.Store)
	}
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	st, err := NewStore(context.Background(), testConfig(t, nil), nil)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	// The memory store's cleanup goroutine must stop on the first Close;
	// a second Close must not block on it.
	done := make(chan error, 1)
	go func() {
		if err := st.Close(); err != nil {
			done <- err
			return
		}
		done <- st.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close() blocked")
	}
}

func TestNewStore_PostgresRequiresPool(t *testing.T) {
	_, err := NewStore(context.Background(), testConfig(t, config.Env{"SESSION_STORE": "postgres"}), nil)
	if !errors.Is(err, ErrPoolRequired) {
		t.Fatalf("NewStore() error = %v, want ErrPoolRequired", err)
	}
}

func TestNewStore_Unknown(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.SessionStore = "files"

	_, err := NewStore(context.Background(), cfg, nil)
	if !errors.Is(err, config.ErrUnknownSessionStore) {
		t.Fatalf("NewStore() error = %v, want ErrUnknownSessionStore", err)
	}
}

func TestNewStore_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")
	cfg := testConfig(t, config.Env{"SESSION_STORE": "sqlite", "SESSION_DB_PATH": path})

	st, err := NewStore(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	defer func() { _ = st.Close() }()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("session database not created: %v", err)
	}

	expiry := time.Now().Add(time.Hour)
	if err := st.Commit("token-1", []byte("payload"), expiry); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	b, found, err := st.Find("token-1")
	if err != nil || !found {
		t.Fatalf("Find() = found %v, err %v", found, err)
	}
	if string(b) != "payload" {
		t.Errorf("Find() = %q, want %q", b, "payload")
	}
}

func TestSQLite3Store_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite3store.NewWithCleanupInterval(db, 0)

	if err := store.Commit("abc", []byte("data"), time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if _, found, _ := store.Find("abc"); !found {
		t.Fatal("expected committed session to be found")
	}

	if err := store.Delete("abc"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, found, _ := store.Find("abc"); found {
		t.Error("expected deleted session to be gone")
	}

	if err := store.Commit("old", []byte("data"), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if _, found, _ := store.Find("old"); found {
		t.Error("expected expired session to be ignored")
	}
}

func TestMigrateSQLite_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := MigrateSQLite(context.Background(), db); err != nil {
		t.Fatalf("second MigrateSQLite() error: %v", err)
	}
}
