// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the protected dashboard.
	RouteRoot = "/"
	// RouteLogin is the login page.
	RouteLogin = "/login"
	// RouteLogout ends the session.
	RouteLogout = "/logout"
	// RouteDevSession establishes a session without credentials (development only).
	RouteDevSession = "/dev/session"

	// RouteHealthLive is the liveness probe.
	RouteHealthLive = "/health/live"
	// RouteHealthReady is the readiness probe.
	RouteHealthReady = "/health/ready"
	// RouteHealthDB opens a fresh database connection per request.
	RouteHealthDB = "/health/db"
)

// Template names.
const (
	templateLogin     = "login.html"
	templateDashboard = "dashboard.html"
)

// Health status values.
const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)
