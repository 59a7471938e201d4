// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deez-automations/authsys/internal/config"
	"github.com/deez-automations/authsys/internal/database"
)

// Pool is the subset of *pgxpool.Pool the readiness probe uses.
type Pool interface {
	database.Querier
	Ping(ctx context.Context) error
}

// probeTimeout bounds each database check.
const probeTimeout = 5 * time.Second

// HealthHandler handles health check requests.
type HealthHandler struct {
	cfg       *config.Config
	pool      Pool
	connect   func(ctx context.Context) error
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
// pool may be nil when no pool was opened; readiness then reports unhealthy.
func NewHealthHandler(cfg *config.Config, pool Pool, version string) *HealthHandler {
	h := &HealthHandler{
		cfg:       cfg,
		pool:      pool,
		version:   version,
		startTime: time.Now(),
	}
	h.connect = h.connectOnce
	return h
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// ReadyStatus is the readiness response.
type ReadyStatus struct {
	Status   string           `json:"status"`
	Uptime   string           `json:"uptime,omitempty"`
	Version  string           `json:"version,omitempty"`
	Database Check            `json:"database"`
	Server   []map[string]any `json:"server,omitempty"`
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

// Readiness handles GET /health/ready - pings the shared pool.
// In debug mode the response includes uptime, version and server settings.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	check := h.checkPool(ctx)
	status := ReadyStatus{Status: "ready", Database: check}
	code := http.StatusOK
	if check.Status != statusHealthy {
		status.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	if h.cfg.Debug() {
		status.Uptime = time.Since(h.startTime).Round(time.Second).String()
		status.Version = h.version
		if check.Status == statusHealthy {
			rows, err := database.QueryMaps(ctx, h.pool,
				"SELECT current_setting('server_version') AS server_version, current_database() AS database")
			if err == nil {
				status.Server = rows
			}
		}
	}

	writeJSON(w, code, status)
}

// DB handles GET /health/db by opening, and closing, a fresh connection.
// Clients see the generic failure message unless debug mode is on.
func (h *HealthHandler) DB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	start := time.Now()
	if err := h.connect(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, Check{
			Status:  statusUnhealthy,
			Message: database.Message(err, h.cfg.Debug()),
		})
		return
	}

	writeJSON(w, http.StatusOK, Check{
		Status:  statusHealthy,
		Message: "Connected",
		Latency: time.Since(start).String(),
	})
}

// connectOnce opens a single connection and closes it again.
func (h *HealthHandler) connectOnce(ctx context.Context) error {
	conn, err := database.Connect(ctx, h.cfg)
	if err != nil {
		return err
	}
	return conn.Close(ctx)
}

// checkPool verifies pool connectivity.
func (h *HealthHandler) checkPool(ctx context.Context) Check {
	if h.pool == nil {
		return Check{Status: statusUnhealthy, Message: "no database pool"}
	}

	start := time.Now()
	err := h.pool.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		msg := database.GenericFailureMessage
		if h.cfg.Debug() {
			msg = err.Error()
		}
		return Check{
			Status:  statusUnhealthy,
			Message: msg,
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  statusHealthy,
		Message: "Connected",
		Latency: latency.String(),
	}
}
