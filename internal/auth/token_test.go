// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioweb/folio/internal/auth"
	"github.com/folioweb/folio/pkg/errutil"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestNewTokenService(t *testing.T) {
	t.Run("rejects short secret", func(t *testing.T) {
		svc, err := auth.NewTokenService([]byte("short"))
		require.Error(t, err)
		assert.Nil(t, svc)
		errutil.AssertErrorCode(t, err, "TOKEN_SECRET_INVALID")
	})

	t.Run("rejects non-positive max age", func(t *testing.T) {
		_, err := auth.NewTokenService(testSecret, auth.WithMaxAge(0))
		require.Error(t, err)
	})

	t.Run("defaults to 1800 seconds", func(t *testing.T) {
		svc, err := auth.NewTokenService(testSecret)
		require.NoError(t, err)
		assert.Equal(t, 1800*time.Second, svc.MaxAge())
	})
}

func TestTokenService_MintVerify(t *testing.T) {
	clock := newClock()
	svc, err := auth.NewTokenService(testSecret, auth.WithClock(clock.Now))
	require.NoError(t, err)

	t.Run("round trip returns user id", func(t *testing.T) {
		token, err := svc.Mint(42)
		require.NoError(t, err)

		id, ok := svc.Verify(token)
		assert.True(t, ok)
		assert.Equal(t, int64(42), id)
	})

	t.Run("token is url path safe", func(t *testing.T) {
		token, err := svc.Mint(7)
		require.NoError(t, err)
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "=")
	})

	t.Run("rejects non-positive user id", func(t *testing.T) {
		_, err := svc.Mint(0)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_MINT_FAILED")
	})
}

func TestTokenService_Expiry(t *testing.T) {
	clock := newClock()
	svc, err := auth.NewTokenService(testSecret, auth.WithClock(clock.Now))
	require.NoError(t, err)

	token, err := svc.Mint(42)
	require.NoError(t, err)

	clock.Advance(svc.MaxAge())
	_, ok := svc.Verify(token)
	assert.True(t, ok, "token at exactly max age is still valid")

	clock.Advance(time.Second)
	id, ok := svc.Verify(token)
	assert.False(t, ok, "token at max age + 1s must be invalid")
	assert.Zero(t, id)
}

func TestTokenService_Tampering(t *testing.T) {
	svc, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)

	token, err := svc.Mint(42)
	require.NoError(t, err)

	for i := range len(token) {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		id, ok := svc.Verify(tampered)
		assert.False(t, ok, "byte %d flipped: %q", i, tampered)
		assert.Zero(t, id)
	}
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	svc, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := auth.NewTokenService([]byte(strings.Repeat("x", 32)))
		require.NoError(t, err)
		token, err := other.Mint(42)
		require.NoError(t, err)

		_, ok := svc.Verify(token)
		assert.False(t, ok)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, token := range []string{"", "abc", "a.b.c", "..", "not a token"} {
			_, ok := svc.Verify(token)
			assert.False(t, ok, token)
		}
	})

	t.Run("alg none", func(t *testing.T) {
		claims := jwt.MapClaims{"user_id": 42, "iat": time.Now().Unix()}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, ok := svc.Verify(token)
		assert.False(t, ok)
	})

	t.Run("missing iat", func(t *testing.T) {
		claims := jwt.MapClaims{"user_id": 42}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)

		_, ok := svc.Verify(token)
		assert.False(t, ok)
	})

	t.Run("missing user id", func(t *testing.T) {
		claims := jwt.MapClaims{"iat": time.Now().Unix()}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)

		_, ok := svc.Verify(token)
		assert.False(t, ok)
	})
}
