// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultEnvFile is the env file read when no path is given.
const DefaultEnvFile = ".env"

// ErrEnvFileNotFound is returned by LoadEnv when the env file does not exist.
var ErrEnvFileNotFound = errors.New("env file not found")

// Env is a snapshot of configuration entries keyed by variable name.
type Env map[string]string

// ProcessEnv returns a snapshot of the current process environment.
func ProcessEnv() Env {
	return env.ToMap(os.Environ())
}

// Lookup returns the value stored for key, or def when the key is not set.
// A key set to the empty string is considered set.
func (e Env) Lookup(key, def string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return def
}

// Merge returns a new Env with the entries of other laid over e.
func (e Env) Merge(other Env) Env {
	out := make(Env, len(e)+len(other))
	maps.Copy(out, e)
	maps.Copy(out, other)
	return out
}

// LoadEnv reads KEY=VALUE definitions from path into the process environment
// and returns them. An empty path means DefaultEnvFile.
func LoadEnv(path string) (Env, error) {
	if path == "" {
		path = DefaultEnvFile
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrEnvFileNotFound, path)
		}
		return nil, fmt.Errorf("opening env file: %w", err)
	}
	defer func() { _ = f.Close() }()

	values, err := ParseEnv(f)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	for key, value := range values {
		if err := os.Setenv(key, value); err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
	}

	return values, nil
}

// ParseEnv parses env file content. Blank lines, comment lines and lines
// without '=' are ignored. Later definitions of a key win.
func ParseEnv(r io.Reader) (Env, error) {
	values := make(Env)
	br := bufio.NewReader(r)
	first := true

	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		atEOF := err != nil

		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}

		if key, value, ok := parseLine(line); ok {
			values[key] = value
		}
		if atEOF {
			break
		}
	}

	return values, nil
}

// parseLine splits one KEY=VALUE definition. Lines may be any length.
func parseLine(line string) (string, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(value)), true
}

// unquote strips one layer of matching single or double quotes.
func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	if q := v[0]; (q == '"' || q == '\'') && v[len(v)-1] == q {
		return v[1 : len(v)-1]
	}
	return v
}
