// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces an argon2id hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash string) (bool, error)

	// NeedsUpgrade returns true if the hash should be re-hashed with argon2id.
	NeedsUpgrade(hash string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id.
//
// Hashes written by the previous deployment (werkzeug "pbkdf2:" and
// "scrypt:" formats) are still accepted by Verify and reported by
// NeedsUpgrade so they are replaced on the next successful login.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify checks if the password matches the hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, "pbkdf2:"):
		return verifyWerkzeugPBKDF2(password, encodedHash)
	case strings.HasPrefix(encodedHash, "scrypt:"):
		return verifyWerkzeugScrypt(password, encodedHash)
	}
	return verifyArgon2id(password, encodedHash)
}

// NeedsUpgrade returns true if the hash is not argon2id with the current
// parameters.
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	current := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$", argon2.Version, argon2Memory, argon2Time, argon2Threads)
	return !strings.HasPrefix(hash, current)
}

func verifyArgon2id(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	if threads > 255 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d exceeds uint8 max", threads)
	}

	keyLen := len(expectedHash)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computedHash := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1, nil
}

// splitWerkzeugHash splits "method$salt$hexhash" and decodes the hash.
func splitWerkzeugHash(encodedHash string) (method, salt string, expected []byte, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 3 || parts[1] == "" {
		return "", "", nil, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}
	expected, err = hex.DecodeString(parts[2])
	if err != nil || len(expected) == 0 {
		return "", "", nil, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash digest")
	}
	return parts[0], parts[1], expected, nil
}

// verifyWerkzeugPBKDF2 checks "pbkdf2:sha256:<iterations>$<salt>$<hex>".
func verifyWerkzeugPBKDF2(password, encodedHash string) (bool, error) {
	method, salt, expected, err := splitWerkzeugHash(encodedHash)
	if err != nil {
		return false, err
	}

	fields := strings.Split(method, ":")
	if len(fields) < 2 || fields[1] != "sha256" {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", method)
	}
	iterations := 600000
	if len(fields) == 3 {
		iterations, err = strconv.Atoi(fields[2])
		if err != nil || iterations <= 0 {
			return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid iteration count")
		}
	}

	computed := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// verifyWerkzeugScrypt checks "scrypt:<n>:<r>:<p>$<salt>$<hex>".
func verifyWerkzeugScrypt(password, encodedHash string) (bool, error) {
	method, salt, expected, err := splitWerkzeugHash(encodedHash)
	if err != nil {
		return false, err
	}

	n, r, p := 32768, 8, 1
	fields := strings.Split(method, ":")
	if len(fields) == 4 {
		var convErr error
		vals := make([]int, 3)
		for i, f := range fields[1:] {
			vals[i], convErr = strconv.Atoi(f)
			if convErr != nil || vals[i] <= 0 {
				return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid scrypt parameters")
			}
		}
		n, r, p = vals[0], vals[1], vals[2]
	} else if len(fields) != 1 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid scrypt parameters")
	}

	computed, err := scrypt.Key([]byte(password), []byte(salt), n, r, p, len(expected))
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
