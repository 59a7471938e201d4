// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/deez-automations/authsys/internal/guard"
	"github.com/deez-automations/authsys/internal/testutil"
	"github.com/deez-automations/authsys/web"
)

// testRenderer parses the embedded templates.
func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	sub, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	rr, err := NewRenderer(sub)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return rr
}

// testAuthHandler returns an AuthHandler over a fresh in-memory session store.
func testAuthHandler(t *testing.T) (*AuthHandler, *guard.Guard, *scs.SessionManager, *memstore.MemStore) {
	t.Helper()
	sm, store := testutil.SessionManager(t)
	g := guard.New(sm, "/login")
	return NewAuthHandler(g, testRenderer(t)), g, sm, store
}
