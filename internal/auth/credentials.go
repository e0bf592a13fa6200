// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// CredentialStore owns user identity and password hashes.
type CredentialStore struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewCredentialStore creates a CredentialStore with a no-op logger.
func NewCredentialStore(users UserRepository, hasher PasswordHasher) (*CredentialStore, error) {
	return NewCredentialStoreWithLogger(users, hasher, nil)
}

// NewCredentialStoreWithLogger creates a CredentialStore with the given logger.
// A nil logger discards output.
func NewCredentialStoreWithLogger(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*CredentialStore, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CredentialStore{users: users, hasher: hasher, logger: logger}, nil
}

// Create registers a new user with an empty profile.
// Returns a *ValidationError for malformed input and an error wrapping
// ErrConflict when the username or email is already taken.
func (s *CredentialStore) Create(ctx context.Context, username, email, password string, isAdmin bool) (*User, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("USER_CREATE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(username, email, hash, isAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, oops.Code("USER_CREATE_FAILED").
			With("operation", "persist user").
			With("username", username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", user.ID, "admin", isAdmin)
	return user, nil
}

// VerifyPassword reports whether password matches the user's stored hash.
// An unreadable stored hash counts as a mismatch.
func (s *CredentialStore) VerifyPassword(user *User, password string) bool {
	if user == nil || password == "" {
		return false
	}
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", "user_id", user.ID, "error", err)
		return false
	}
	return ok
}

// SetPassword rehashes and overwrites the user's password. Outstanding reset
// tokens for the user stay valid until they expire.
func (s *CredentialStore) SetPassword(ctx context.Context, user *User, password string) error {
	if user == nil {
		return oops.Code("USER_SET_PASSWORD_FAILED").Errorf("user is required")
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return oops.Code("USER_SET_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return oops.Code("USER_SET_PASSWORD_FAILED").
			With("operation", "update password").
			With("user_id", user.ID).
			Wrap(err)
	}

	user.PasswordHash = hash
	return nil
}

// Upgrade replaces a legacy or outdated hash after a successful login.
// Failures are logged; the login itself is unaffected.
func (s *CredentialStore) Upgrade(ctx context.Context, user *User, password string) {
	if user == nil || !s.hasher.NeedsUpgrade(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
}

// Users exposes the underlying repository for lookups.
func (s *CredentialStore) Users() UserRepository {
	return s.users
}
