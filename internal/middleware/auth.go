// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware in front of the session pages.
package middleware

import (
	"context"
	"net/http"

	"github.com/deez-automations/authsys/internal/guard"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for user data.
const (
	ContextKeyUser        ContextKey = "user"
	ContextKeyRequestPath ContextKey = "request_path"
)

// User is the authenticated principal as cached in the session.
type User struct {
	ID    int64
	Email string
}

// Auth creates middleware that requires authentication.
// Anonymous requests are redirected to the guard's login URL.
func Auth(g *guard.Guard) func(http.Handler) http.Handler {
	return g.Middleware("")
}

// LoadUser creates middleware that loads the current user into the request context.
// Anonymous requests pass through unchanged.
func LoadUser(g *guard.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.IsAuthenticated(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			id, _ := g.CurrentUserID(r.Context())
			email, _ := g.CurrentUserEmail(r.Context())

			ctx := context.WithValue(r.Context(), ContextKeyUser, User{ID: id, Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *User {
	user, ok := r.Context().Value(ContextKeyUser).(User)
	if !ok {
		return nil
	}
	return &user
}

// RequestPath creates middleware that stores the request path in the context.
// The logging handler reads it to attach the URL to error records.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
