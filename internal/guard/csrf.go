// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package guard

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// CSRFTokenBytes is the number of random bytes in a CSRF token.
const CSRFTokenBytes = 32

// GenerateCSRFToken returns the session's CSRF token, creating one when the
// session has none. The token stays stable until the session is destroyed.
func (g *Guard) GenerateCSRFToken(ctx context.Context) (string, error) {
	if token := g.sm.GetString(ctx, KeyCSRFToken); token != "" {
		return token, nil
	}

	b := make([]byte, CSRFTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating csrf token: %w", err)
	}

	token := hex.EncodeToString(b)
	g.sm.Put(ctx, KeyCSRFToken, token)
	return token, nil
}

// ValidateCSRFToken reports whether candidate equals the session's token.
// The comparison takes the same time wherever the inputs first differ.
func (g *Guard) ValidateCSRFToken(ctx context.Context, candidate string) bool {
	token := g.sm.GetString(ctx, KeyCSRFToken)
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(candidate)) == 1
}
