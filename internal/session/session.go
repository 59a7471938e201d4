// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session builds the scs session manager and its storage backend.
package session

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/deez-automations/authsys/internal/config"
)

// SecureCookieName is used when cookies are restricted to HTTPS.
const SecureCookieName = "__Host-session"

// New creates a session manager backed by store and configured from cfg.
func New(cfg *config.Config, store scs.Store) *scs.SessionManager {
	sm := scs.New()
	sm.Store = store

	sm.Lifetime = cfg.SessionTTL()
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = bool(cfg.SessionSecure)
	if sm.Cookie.Secure {
		// __Host- requires Secure, Path=/ and no Domain.
		sm.Cookie.Name = SecureCookieName
	}

	return sm
}
