// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	url := os.Getenv("AUTHSYS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("set AUTHSYS_TEST_REDIS_URL to run Redis store tests")
	}

	prefix := "authsys-test:" + uuid.NewString() + ":"
	store, err := NewRedisStoreFromURL(context.Background(), url, prefix)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store := testRedisStore(t)
	ctx := context.Background()

	_, found, err := store.FindCtx(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.CommitCtx(ctx, "tok", []byte("payload"), time.Now().Add(time.Minute)))

	b, found, err := store.FindCtx(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "payload", string(b))

	require.NoError(t, store.DeleteCtx(ctx, "tok"))
	_, found, err = store.FindCtx(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting twice is fine.
	require.NoError(t, store.Delete("tok"))
}

func TestRedisStore_ExpiredCommitDeletes(t *testing.T) {
	store := testRedisStore(t)

	require.NoError(t, store.Commit("tok", []byte("payload"), time.Now().Add(time.Minute)))
	require.NoError(t, store.Commit("tok", []byte("payload"), time.Now().Add(-time.Second)))

	_, found, err := store.Find("tok")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRedisStoreFromURL_BadURL(t *testing.T) {
	_, err := NewRedisStoreFromURL(context.Background(), "not a url", "p:")
	assert.Error(t, err)
}
