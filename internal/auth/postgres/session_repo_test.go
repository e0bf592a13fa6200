// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioweb/folio/internal/auth"
	"github.com/folioweb/folio/internal/auth/postgres"
)

// createTestUser inserts a user with an empty profile and removes it on cleanup.
func createTestUser(ctx context.Context, t *testing.T, username string) *auth.User {
	t.Helper()
	user, err := auth.NewUser(username, username+"@example.com", "testhash", false)
	require.NoError(t, err)
	require.NoError(t, postgres.NewUserRepository(testPool).Create(ctx, user))

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID)
	})
	return user
}

func newTestSession(t *testing.T, userID int64, tokenHash string, expiresAt time.Time) *auth.WebSession {
	t.Helper()
	s, err := auth.NewWebSession(userID, tokenHash, false, "Mozilla/5.0", "127.0.0.1", expiresAt)
	require.NoError(t, err)
	return s
}

func TestWebSessionRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewWebSessionRepository(testPool)
	user := createTestUser(ctx, t, "session_create")

	session := newTestSession(t, user.ID, "hash-create", time.Now().Add(time.Hour))
	session.Remember = true
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.GetByTokenHash(ctx, "hash-create")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.True(t, got.Remember)
	assert.Equal(t, "Mozilla/5.0", got.UserAgent)
	assert.WithinDuration(t, session.ExpiresAt, got.ExpiresAt, time.Millisecond)

	_, err = repo.GetByTokenHash(ctx, "missing")
	assert.True(t, errors.Is(err, auth.ErrNotFound))
}

func TestWebSessionRepository_UpdateLastSeenAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewWebSessionRepository(testPool)
	user := createTestUser(ctx, t, "session_touch")

	session := newTestSession(t, user.ID, "hash-touch", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, session))

	seen := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.UpdateLastSeen(ctx, session.ID, seen))
	got, err := repo.GetByTokenHash(ctx, "hash-touch")
	require.NoError(t, err)
	assert.True(t, seen.Equal(got.LastSeenAt))

	require.NoError(t, repo.Delete(ctx, session.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, session.ID), auth.ErrNotFound))
	assert.True(t, errors.Is(repo.UpdateLastSeen(ctx, session.ID, seen), auth.ErrNotFound))
}

func TestWebSessionRepository_DeleteByUserAndExpired(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewWebSessionRepository(testPool)
	user := createTestUser(ctx, t, "session_bulk")
	other := createTestUser(ctx, t, "session_bulk_other")

	require.NoError(t, repo.Create(ctx, newTestSession(t, user.ID, "bulk-1", time.Now().Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newTestSession(t, user.ID, "bulk-2", time.Now().Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newTestSession(t, other.ID, "bulk-expired", time.Now().Add(-time.Hour))))

	require.NoError(t, repo.DeleteByUser(ctx, user.ID))
	_, err := repo.GetByTokenHash(ctx, "bulk-1")
	assert.True(t, errors.Is(err, auth.ErrNotFound))

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
	_, err = repo.GetByTokenHash(ctx, "bulk-expired")
	assert.True(t, errors.Is(err, auth.ErrNotFound))
}

func TestWebSessionRepository_CascadeOnUserDelete(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewWebSessionRepository(testPool)
	user := createTestUser(ctx, t, "session_cascade")

	require.NoError(t, repo.Create(ctx, newTestSession(t, user.ID, "cascade-1", time.Now().Add(time.Hour))))
	require.NoError(t, postgres.NewUserRepository(testPool).Delete(ctx, user.ID))

	_, err := repo.GetByTokenHash(ctx, "cascade-1")
	assert.True(t, errors.Is(err, auth.ErrNotFound))
}
