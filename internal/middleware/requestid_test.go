// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	incoming := uuid.NewString()

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "generates when missing"},
		{name: "replaces malformed", header: "not-a-uuid"},
		{name: "reuses valid", header: incoming, wantSame: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("request ID %q is not a UUID", seen)
			}
			if rec.Header().Get(RequestIDHeader) != seen {
				t.Errorf("response header = %q, context = %q", rec.Header().Get(RequestIDHeader), seen)
			}
			if tt.wantSame && seen != incoming {
				t.Errorf("request ID = %q, want %q", seen, incoming)
			}
			if !tt.wantSame && seen == tt.header {
				t.Errorf("malformed ID %q was reused", seen)
			}
		})
	}
}
