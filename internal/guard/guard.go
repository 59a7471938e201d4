// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guard answers login-state questions about the current request's
// session and issues and checks its CSRF token.
//
// Every method takes a context carrying session data, i.e. a request context
// inside scs.SessionManager.LoadAndSave or a context returned by
// scs.SessionManager.Load. An absent session value is a normal, anonymous
// state and never an error.
package guard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	KeyUserID    = "user_id"
	KeyEmail     = "email"
	KeyCSRFToken = "csrf_token"
)

// DefaultLoginURL is used when no login URL is configured.
const DefaultLoginURL = "/login"

// ErrInvalidUserID is returned by Login for a zero user ID.
var ErrInvalidUserID = errors.New("user ID must be non-zero")

// Guard gates requests on the session's login state.
type Guard struct {
	sm       *scs.SessionManager
	loginURL string
}

// New creates a Guard. An empty loginURL means DefaultLoginURL.
func New(sm *scs.SessionManager, loginURL string) *Guard {
	if loginURL == "" {
		loginURL = DefaultLoginURL
	}
	return &Guard{sm: sm, loginURL: loginURL}
}

// LoginURL returns the default redirect target for anonymous requests.
func (g *Guard) LoginURL() string {
	return g.loginURL
}

// IsAuthenticated reports whether the session carries a non-zero user ID.
// It agrees with CurrentUserID for every stored value.
func (g *Guard) IsAuthenticated(ctx context.Context) bool {
	_, ok := g.CurrentUserID(ctx)
	return ok
}

// RequireAuth redirects anonymous requests to redirectURL (the login URL when
// empty) and returns false; the caller must stop handling the request.
// It must run before anything is written to w.
func (g *Guard) RequireAuth(w http.ResponseWriter, r *http.Request, redirectURL string) bool {
	if g.IsAuthenticated(r.Context()) {
		return true
	}
	if redirectURL == "" {
		redirectURL = g.loginURL
	}
	http.Redirect(w, r, redirectURL, http.StatusFound)
	return false
}

// Middleware returns RequireAuth as router middleware.
func (g *Guard) Middleware(redirectURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.RequireAuth(w, r, redirectURL) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUserID returns the session's non-zero user ID, if any.
// Login stores an int64; other integer types and decimal strings written by
// an external login flow are converted.
func (g *Guard) CurrentUserID(ctx context.Context) (int64, bool) {
	id, ok := toUserID(g.sm.Get(ctx, KeyUserID))
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// CurrentUserEmail returns the session's cached email address, if any.
func (g *Guard) CurrentUserEmail(ctx context.Context) (string, bool) {
	email, ok := g.sm.Get(ctx, KeyEmail).(string)
	return email, ok
}

// Login marks the session as belonging to userID. The session token is
// renewed first so a pre-login token cannot be reused.
func (g *Guard) Login(ctx context.Context, userID int64, email string) error {
	if userID == 0 {
		return ErrInvalidUserID
	}
	if err := g.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	g.sm.Put(ctx, KeyUserID, userID)
	g.sm.Put(ctx, KeyEmail, email)
	return nil
}

// Logout clears every session value and deletes the stored session record.
// Calling it on an anonymous session is a no-op.
func (g *Guard) Logout(ctx context.Context) error {
	if err := g.sm.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

// toUserID converts a stored user ID to int64.
func toUserID(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
