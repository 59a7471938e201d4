// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that keeps a persistent error log.
// Records at WARN level and above are written to the wrapped handler and,
// as JSON lines, to an error log file.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// PathFunc extracts the request path from a context, or "" when there is none.
type PathFunc func(ctx context.Context) string

// ErrorFileHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to an error log.
type ErrorFileHandler struct {
	inner slog.Handler
	file  slog.Handler
	level slog.Level // Minimum level to tee into the error log (default: WARN)
	path  PathFunc
}

// NewErrorFileHandler creates an ErrorFileHandler writing error records to w.
// path may be nil.
func NewErrorFileHandler(inner slog.Handler, w io.Writer, path PathFunc) *ErrorFileHandler {
	return NewErrorFileHandlerWithLevel(inner, w, path, slog.LevelWarn)
}

// NewErrorFileHandlerWithLevel creates an ErrorFileHandler with a custom minimum level.
func NewErrorFileHandlerWithLevel(inner slog.Handler, w io.Writer, path PathFunc, level slog.Level) *ErrorFileHandler {
	return &ErrorFileHandler{
		inner: inner,
		file:  slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
		level: level,
		path:  path,
	}
}

// OpenErrorLog opens (creating if needed) the append-only error log at path.
func OpenErrorLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating error log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("opening error log: %w", err)
	}
	return f, nil
}

// Enabled implements slog.Handler.
// Error records are accepted even when the inner handler's level is higher.
func (h *ErrorFileHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level || h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ErrorFileHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error

	if h.inner.Enabled(ctx, r.Level) {
		if err := h.inner.Handle(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}

	if r.Level >= h.level {
		fr := r.Clone()
		if h.path != nil {
			if p := h.path(ctx); p != "" {
				fr.AddAttrs(slog.String("url", p))
			}
		}
		if err := h.file.Handle(ctx, fr); err != nil {
			errs = append(errs, fmt.Errorf("writing error log: %w", err))
		}
	}

	return errors.Join(errs...)
}

// WithAttrs implements slog.Handler.
func (h *ErrorFileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrorFileHandler{
		inner: h.inner.WithAttrs(attrs),
		file:  h.file.WithAttrs(attrs),
		level: h.level,
		path:  h.path,
	}
}

// WithGroup implements slog.Handler.
func (h *ErrorFileHandler) WithGroup(name string) slog.Handler {
	return &ErrorFileHandler{
		inner: h.inner.WithGroup(name),
		file:  h.file.WithGroup(name),
		level: h.level,
		path:  h.path,
	}
}
