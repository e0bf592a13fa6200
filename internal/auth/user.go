// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultAvatar is the avatar reference meaning "no avatar uploaded".
const DefaultAvatar = "default.jpg"

// Field length limits, mirrored by the schema.
const (
	MinUsernameLength = 1
	MaxUsernameLength = 50
	MaxEmailLength    = 120
	MinPasswordLength = 6
	MaxPasswordLength = 128

	MaxLocationLength = 100
	MaxPhoneLength    = 20
	MaxWebsiteLength  = 100
	MaxAvatarLength   = 120
	MaxSocialLength   = 100
)

// User is the identity record. Each User owns exactly one Profile.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	Profile      Profile
}

// Profile holds the editable public details of a User.
type Profile struct {
	Bio      string
	Location string
	Phone    string
	Website  string
	Avatar   string
	LinkedIn string
	GitHub   string
	Twitter  string
}

// NewProfile returns an empty profile with the default avatar.
func NewProfile() Profile {
	return Profile{Avatar: DefaultAvatar}
}

// HasAvatar reports whether a custom avatar has been uploaded.
func (p Profile) HasAvatar() bool {
	return p.Avatar != "" && p.Avatar != DefaultAvatar
}

// NewUser builds an unsaved User with an empty profile. The caller supplies
// an already computed password hash.
func NewUser(username, email, passwordHash string, isAdmin bool) (*User, error) {
	verr := &ValidationError{}
	validateUsername(verr, username)
	validateEmail(verr, email)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
		Profile:      NewProfile(),
	}, nil
}

// ValidateEmail checks length and address syntax.
func ValidateEmail(email string) error {
	verr := &ValidationError{}
	validateEmail(verr, email)
	return verr.OrNil()
}

// ValidatePassword enforces the password policy shared by registration,
// reset and admin user creation.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return NewValidationError("password", "Password must be at least 6 characters long.")
	}
	if n > MaxPasswordLength {
		return NewValidationError("password", "Password must be at most 128 characters long.")
	}
	return nil
}

func validateUsername(verr *ValidationError, username string) {
	n := utf8.RuneCountInString(username)
	switch {
	case strings.TrimSpace(username) == "":
		verr.Add("username", "Username is required.")
	case n < MinUsernameLength || n > MaxUsernameLength:
		verr.Add("username", "Username must be between 1 and 50 characters long.")
	}
}

func validateEmail(verr *ValidationError, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		verr.Add("email", "Email is required.")
	case utf8.RuneCountInString(email) > MaxEmailLength:
		verr.Add("email", "Email must be at most 120 characters long.")
	default:
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			verr.Add("email", "Invalid email address.")
		}
	}
}

// UserRepository manages user persistence. The store is the sole arbiter of
// username/email uniqueness: Create and Update return an error wrapping
// ErrConflict on a unique violation and leave the stored rows untouched.
type UserRepository interface {
	// Create stores a new user and its profile atomically and sets user.ID.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user and its profile by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by exact email match.
	// Returns ErrNotFound if no user has the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername retrieves a user by exact username match.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Update writes username, email and profile fields in one transaction.
	Update(ctx context.Context, user *User) error

	// UpdatePassword updates only the password hash for a user.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// Delete removes a user; the profile is removed with it.
	Delete(ctx context.Context, id int64) error
}
