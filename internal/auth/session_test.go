// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioweb/folio/internal/auth"
	"github.com/folioweb/folio/pkg/errutil"
)

func TestGenerateSessionToken(t *testing.T) {
	t.Run("generates secure token", func(t *testing.T) {
		token, hash, err := auth.GenerateSessionToken()
		require.NoError(t, err)
		assert.Len(t, token, 64) // 32 bytes hex-encoded
		assert.Len(t, hash, 64)  // SHA256 hex
		assert.NotEqual(t, token, hash)
		assert.Equal(t, auth.HashSessionToken(token), hash)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		token1, _, err := auth.GenerateSessionToken()
		require.NoError(t, err)
		token2, _, err := auth.GenerateSessionToken()
		require.NoError(t, err)
		assert.NotEqual(t, token1, token2)
	})
}

func TestVerifySessionToken(t *testing.T) {
	token, hash, err := auth.GenerateSessionToken()
	require.NoError(t, err)

	assert.True(t, auth.VerifySessionToken(token, hash))
	assert.False(t, auth.VerifySessionToken("other", hash))
	assert.False(t, auth.VerifySessionToken("", hash))
	assert.False(t, auth.VerifySessionToken(token, ""))
}

func TestNewWebSession(t *testing.T) {
	expires := time.Now().Add(time.Hour)

	t.Run("valid session", func(t *testing.T) {
		s, err := auth.NewWebSession(1, "hash", true, "Mozilla/5.0", "127.0.0.1", expires)
		require.NoError(t, err)
		assert.Equal(t, int64(1), s.UserID)
		assert.True(t, s.Remember)
		assert.False(t, s.ID.IsZero())
		assert.Equal(t, s.CreatedAt, s.LastSeenAt)
	})

	tests := []struct {
		name    string
		userID  int64
		hash    string
		expires time.Time
		code    string
	}{
		{"zero user", 0, "hash", expires, "SESSION_INVALID_USER"},
		{"empty hash", 1, "", expires, "SESSION_INVALID_HASH"},
		{"zero expiry", 1, "hash", time.Time{}, "SESSION_INVALID_EXPIRY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := auth.NewWebSession(tt.userID, tt.hash, false, "", "", tt.expires)
			require.Error(t, err)
			assert.Nil(t, s)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestWebSession_IsExpiredAt(t *testing.T) {
	now := time.Now()
	s := &auth.WebSession{ExpiresAt: now}

	assert.False(t, s.IsExpiredAt(now))
	assert.True(t, s.IsExpiredAt(now.Add(time.Nanosecond)))
	assert.False(t, s.IsExpiredAt(now.Add(-time.Minute)))
}
