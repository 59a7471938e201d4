// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	csrf "filippo.io/csrf/gorilla"

	"github.com/deez-automations/authsys/internal/guard"
)

// Where VerifyCSRF looks for the submitted token.
const (
	CSRFFormField = "csrf_token"
	CSRFHeader    = "X-CSRF-Token"
)

// CrossOriginConfig holds configuration for cross-origin request protection.
// filippo.io/csrf/gorilla checks Fetch metadata headers instead of cookies.
type CrossOriginConfig struct {
	// AuthKey is accepted for API compatibility with gorilla/csrf.
	AuthKey []byte

	// ErrorHandler is called when a cross-origin check fails.
	ErrorHandler http.Handler

	// TrustedOrigins are host[:port] values allowed to make cross-origin requests.
	TrustedOrigins []string
}

// DefaultCrossOriginConfig returns a CrossOriginConfig for the given server address.
func DefaultCrossOriginConfig(authKey []byte, isDev bool, serverAddr string) CrossOriginConfig {
	cfg := CrossOriginConfig{AuthKey: authKey}

	// csrf expects host-only values, not full URLs.
	if isDev {
		cfg.TrustedOrigins = []string{serverAddr}
	}

	return cfg
}

// CrossOrigin rejects unsafe cross-origin browser requests.
func CrossOrigin(cfg CrossOriginConfig) func(http.Handler) http.Handler {
	var opts []csrf.Option

	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(http.HandlerFunc(crossOriginErrorHandler)))
	}

	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}

func crossOriginErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.WarnContext(r.Context(), "cross-origin request rejected",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	http.Error(w, "Forbidden - cross-origin request rejected", http.StatusForbidden)
}

// VerifyCSRF rejects unsafe requests whose submitted token does not match the
// session's CSRF token. The token is read from the X-CSRF-Token header, then
// from the csrf_token form field.
func VerifyCSRF(g *guard.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(CSRFHeader)
			if token == "" {
				token = r.PostFormValue(CSRFFormField)
			}

			if !g.ValidateCSRFToken(r.Context(), token) {
				slog.WarnContext(r.Context(), "CSRF token validation failed",
					"method", r.Method,
					"path", r.URL.Path,
					"token_present", token != "",
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
