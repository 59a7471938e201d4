// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deez-automations/authsys/internal/config"
)

// ErrPoolRequired is returned when the postgres store is selected without a pool.
var ErrPoolRequired = errors.New("postgres session store requires a database pool")

// Store is a session storage backend together with its release function.
type Store struct {
	scs.Store
	Backend string

	close     func() error
	closeOnce sync.Once
	closeErr  error
}

// Close stops background cleanup and releases backend resources.
// Calls after the first return the first result.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.close != nil {
			s.closeErr = s.close()
		}
	})
	return s.closeErr
}

// NewStore creates the backend selected by cfg.SessionStore. The pool is
// only used by the postgres backend, whose table is created by
// database.Migrate.
func NewStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*Store, error) {
	switch cfg.SessionStore {
	case config.StoreMemory:
		ms := memstore.New()
		return &Store{
			Store:   ms,
			Backend: config.StoreMemory,
			close: func() error {
				ms.StopCleanup()
				return nil
			},
		}, nil

	case config.StorePostgres:
		if pool == nil {
			return nil, ErrPoolRequired
		}
		ps := pgxstore.New(pool)
		return &Store{
			Store:   ps,
			Backend: config.StorePostgres,
			close: func() error {
				ps.StopCleanup()
				return nil
			},
		}, nil

	case config.StoreSQLite:
		db, err := OpenSQLite(ctx, cfg.SessionDBPath)
		if err != nil {
			return nil, err
		}
		ss := sqlite3store.New(db)
		return &Store{
			Store:   ss,
			Backend: config.StoreSQLite,
			close: func() error {
				ss.StopCleanup()
				return db.Close()
			},
		}, nil

	case config.StoreRedis:
		rs, err := NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return &Store{Store: rs, Backend: config.StoreRedis, close: rs.Close}, nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrUnknownSessionStore, cfg.SessionStore)
}

// LogValue implements slog.LogValuer.
func (s *Store) LogValue() slog.Value {
	return slog.StringValue(s.Backend)
}
