// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"log/slog"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/deez-automations/authsys/internal/config"
	"github.com/deez-automations/authsys/internal/guard"
	"github.com/deez-automations/authsys/internal/handler"
	"github.com/deez-automations/authsys/internal/middleware"
)

type routerDeps struct {
	cfg         *config.Config
	sm          *scs.SessionManager
	guard       *guard.Guard
	auth        *handler.AuthHandler
	health      *handler.HealthHandler
	rateLimiter *middleware.RateLimiter
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead) // Handle HEAD requests for uptime monitoring

	securityConfig := middleware.DefaultSecurityHeadersConfig(bool(d.cfg.SessionSecure))
	securityConfig.ExcludePaths = []string{"/health"}
	r.Use(middleware.SecurityHeaders(securityConfig))

	// Store request path in context for the error log
	r.Use(middleware.RequestPath)

	// Health probes (no session)
	r.Get(handler.RouteHealthLive, d.health.Liveness)
	r.Get(handler.RouteHealthReady, d.health.Readiness)
	r.Get(handler.RouteHealthDB, d.health.DB)

	// Session-backed pages
	r.Group(func(r chi.Router) {
		r.Use(d.sm.LoadAndSave)
		r.Use(middleware.CrossOrigin(middleware.DefaultCrossOriginConfig(nil, d.cfg.IsDevelopment(), d.cfg.ServerAddr())))
		r.Use(middleware.VerifyCSRF(d.guard))

		// Auth routes (public, rate limited)
		r.Group(func(r chi.Router) {
			r.Use(d.rateLimiter.Middleware())

			r.Get(handler.RouteLogin, d.auth.LoginForm(d.cfg.IsDevelopment()))
			r.Get(handler.RouteLogout, d.auth.Logout)
			r.Post(handler.RouteLogout, d.auth.Logout)

			if d.cfg.IsDevelopment() {
				r.Post(handler.RouteDevSession, d.auth.DevSession)
				slog.Warn("development session route enabled", "route", handler.RouteDevSession)
			}
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.guard))
			r.Use(middleware.LoadUser(d.guard))

			r.Get(handler.RouteRoot, d.auth.Dashboard)
		})
	})

	return r
}
