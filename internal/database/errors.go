// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package database

import "errors"

// GenericFailureMessage is shown to clients when debug output is disabled.
const GenericFailureMessage = "Database connection failed. Please try again later."

// ConnectError describes a failed connection attempt.
type ConnectError struct {
	Host     string
	Database string
	Err      error
}

func (e *ConnectError) Error() string {
	return "database connection failed: " + e.Err.Error()
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Message returns the client-facing text for a connection failure.
// Details are only included when debug is true.
func Message(err error, debug bool) string {
	if !debug || err == nil {
		return GenericFailureMessage
	}
	var ce *ConnectError
	if errors.As(err, &ce) {
		return "Database connection failed: " + ce.Err.Error()
	}
	return "Database connection failed: " + err.Error()
}
