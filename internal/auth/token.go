// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Reset token configuration.
const (
	// DefaultResetTokenMaxAge is how long a minted reset token stays valid.
	DefaultResetTokenMaxAge = 1800 * time.Second

	// MinSecretLength is the minimum signing key length in bytes.
	MinSecretLength = 32
)

// resetClaims is the signed payload of a reset token.
type resetClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies stateless, signed password reset tokens.
// A token is a compact HS256 JWS over {user_id, iat}; its segments are
// base64url so it can be used directly as a URL path segment.
//
// Validity is decided by the verifier: signature valid under the secret and
// now - iat <= maxAge. Nothing is stored, so tokens cannot be revoked early.
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithMaxAge overrides the token lifetime.
func WithMaxAge(d time.Duration) TokenOption {
	return func(s *TokenService) { s.maxAge = d }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code("TOKEN_SECRET_INVALID").
			With("min_length", MinSecretLength).
			Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}
	s := &TokenService{
		secret: append([]byte(nil), secret...),
		maxAge: DefaultResetTokenMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxAge <= 0 {
		return nil, oops.Code("TOKEN_MAX_AGE_INVALID").Errorf("token max age must be positive")
	}
	// Expiry is enforced from iat below, so the parser's own exp/iat time
	// checks are switched off.
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(),
	)
	return s, nil
}

// MaxAge returns the configured token lifetime.
func (s *TokenService) MaxAge() time.Duration {
	return s.maxAge
}

// Mint produces a reset token bound to userID.
func (s *TokenService) Mint(userID int64) (string, error) {
	if userID <= 0 {
		return "", oops.Code("TOKEN_MINT_FAILED").With("user_id", userID).Errorf("user id must be positive")
	}
	claims := resetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", oops.Code("TOKEN_MINT_FAILED").With("user_id", userID).Wrap(err)
	}
	return token, nil
}

// Verify returns the embedded user ID if token is authentic and not older
// than the max age. Every failure, whatever the cause, yields (0, false).
func (s *TokenService) Verify(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}

	claims := &resetClaims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, false
	}
	if claims.IssuedAt == nil || claims.UserID <= 0 {
		return 0, false
	}

	age := s.now().Sub(claims.IssuedAt.Time)
	if age > s.maxAge {
		return 0, false
	}
	return claims.UserID, true
}
