// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioweb/folio/internal/auth"
	"github.com/folioweb/folio/pkg/errutil"
)

// Hashes produced by the previous deployment's password helper.
const (
	legacyPBKDF2 = "pbkdf2:sha256:1000$saltsalt$9f2e6678848885aa21f477f9728b965eb88b11d8ad97e28d1d5db9cd3b180b7e"
	legacyScrypt = "scrypt:1024:8:1$NaClNaCl$fd0620f16f0d0ba477f7098028506452fa63d1deef9fd26266aa8be067b88628" +
		"e3ae67ec022ff3b2b804e7765a6a6dda744392b12023f71cc705a90d805d22f8"
)

func TestHashPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("produces valid hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
	})
}

func TestVerifyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()
	hash, err := hasher.Hash("correctpassword")
	require.NoError(t, err)

	t.Run("correct password verifies", func(t *testing.T) {
		ok, err := hasher.Verify("correctpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid hash format returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "not-a-valid-hash")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
	})

	t.Run("threads overflow is rejected", func(t *testing.T) {
		bad := "$argon2id$v=19$m=65536,t=1,p=256$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
		_, err := hasher.Verify("password", bad)
		require.Error(t, err)
	})
}

func TestVerifyLegacyHashes(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	tests := []struct {
		name string
		hash string
	}{
		{"pbkdf2", legacyPBKDF2},
		{"scrypt", legacyScrypt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := hasher.Verify("hunter22", tt.hash)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = hasher.Verify("hunter23", tt.hash)
			require.NoError(t, err)
			assert.False(t, ok)

			assert.True(t, hasher.NeedsUpgrade(tt.hash))
		})
	}

	t.Run("unsupported pbkdf2 digest", func(t *testing.T) {
		_, err := hasher.Verify("hunter22", "pbkdf2:sha1:1000$saltsalt$00ff")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
	})

	t.Run("malformed digest", func(t *testing.T) {
		_, err := hasher.Verify("hunter22", "scrypt:1024:8:1$salt$not-hex")
		require.Error(t, err)
	})
}

func TestNeedsUpgrade(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	current, err := hasher.Hash("password")
	require.NoError(t, err)
	assert.False(t, hasher.NeedsUpgrade(current))

	assert.True(t, hasher.NeedsUpgrade("$argon2id$v=19$m=32768,t=1,p=4$salt$hash"))
	assert.True(t, hasher.NeedsUpgrade("$2a$10$bcrypthash"))
}
