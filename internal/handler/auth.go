// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mileusna/useragent"

	"github.com/deez-automations/authsys/internal/guard"
	"github.com/deez-automations/authsys/internal/middleware"
)

// AuthHandler serves the session pages.
type AuthHandler struct {
	guard    *guard.Guard
	renderer *Renderer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(g *guard.Guard, renderer *Renderer) *AuthHandler {
	return &AuthHandler{guard: g, renderer: renderer}
}

// LoginData is passed to the login template.
type LoginData struct {
	Title      string
	CSRFToken  string
	CSRFField  string
	DevSession bool
}

// DashboardData is passed to the dashboard template.
type DashboardData struct {
	Title     string
	UserID    int64
	Email     string
	CSRFToken string
	CSRFField string
}

// LoginForm renders the login page.
// Authenticated users are sent to the dashboard.
func (h *AuthHandler) LoginForm(devSession bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.guard.IsAuthenticated(r.Context()) {
			http.Redirect(w, r, RouteRoot, http.StatusFound)
			return
		}

		token, err := h.guard.GenerateCSRFToken(r.Context())
		if err != nil {
			logAndInternalError(w, r, "failed to issue CSRF token", "error", err)
			return
		}

		h.renderer.Render(w, r, http.StatusOK, templateLogin, LoginData{
			Title:      "Sign in",
			CSRFToken:  token,
			CSRFField:  middleware.CSRFFormField,
			DevSession: devSession,
		})
	}
}

// Dashboard renders the protected landing page.
// The user comes from middleware.LoadUser when it ran, else from the session.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	token, err := h.guard.GenerateCSRFToken(r.Context())
	if err != nil {
		logAndInternalError(w, r, "failed to issue CSRF token", "error", err)
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		id, _ := h.guard.CurrentUserID(r.Context())
		email, _ := h.guard.CurrentUserEmail(r.Context())
		user = &middleware.User{ID: id, Email: email}
	}

	h.renderer.Render(w, r, http.StatusOK, templateDashboard, DashboardData{
		Title:     "Dashboard",
		UserID:    user.ID,
		Email:     user.Email,
		CSRFToken: token,
		CSRFField: middleware.CSRFFormField,
	})
}

// Logout ends the session and redirects to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Read before the session is destroyed
	userID, _ := h.guard.CurrentUserID(r.Context())

	if err := h.guard.Logout(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "session destroy error", "error", err)
	}

	if userID > 0 {
		slog.InfoContext(r.Context(), "user logged out", append([]any{"user_id", userID}, clientAttrs(r)...)...)
	}

	http.Redirect(w, r, h.guard.LoginURL(), http.StatusFound)
}

// DevSession logs in as the user_id/email form values.
// It exists so the gated pages can be exercised without a credential flow,
// and is only routed in development.
func (h *AuthHandler) DevSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	userID, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("user_id")), 10, 64)
	if err != nil {
		http.Error(w, "user_id must be an integer", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))

	if err := h.guard.Login(r.Context(), userID, email); err != nil {
		if errors.Is(err, guard.ErrInvalidUserID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logAndInternalError(w, r, "failed to establish session", "error", err)
		return
	}

	slog.InfoContext(r.Context(), "development session established", append([]any{"user_id", userID}, clientAttrs(r)...)...)
	http.Redirect(w, r, RouteRoot, http.StatusFound)
}

// clientAttrs describes the requesting client for audit log lines.
func clientAttrs(r *http.Request) []any {
	ua := useragent.Parse(r.UserAgent())

	browser, osName := ua.Name, ua.OS
	if browser == "" {
		browser = "Unknown"
	}
	if osName == "" {
		osName = "Unknown"
	}

	device := "desktop"
	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Bot:
		device = "bot"
	}

	return []any{
		"ip", r.RemoteAddr,
		"browser", browser,
		"os", osName,
		"device", device,
		"request_id", middleware.GetRequestID(r.Context()),
	}
}
