// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/folioweb/folio/internal/auth"
	"github.com/folioweb/folio/internal/store"
)

type poolIface = store.Pool

// conflictFields maps unique constraint names to the form field they guard.
var conflictFields = map[string]string{
	"users_username_key": "username",
	"users_email_key":    "email",
}

// conflictError converts a unique violation into an error wrapping
// auth.ErrConflict. Returns nil for any other error.
func conflictError(err error) error {
	constraint, ok := store.UniqueViolation(err)
	if !ok {
		return nil
	}
	field, known := conflictFields[constraint]
	if !known {
		field = constraint
	}
	return oops.Code("AUTH_CONFLICT").
		With("field", field).
		With("constraint", constraint).
		Wrap(auth.ErrConflict)
}

const selectUser = `
	SELECT u.id, u.username, u.email, u.password_hash, u.is_admin, u.created_at,
	       p.bio, p.location, p.phone, p.website, p.avatar, p.linkedin, p.github, p.twitter
	FROM users u
	JOIN user_profiles p ON p.user_id = u.id
`

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user and its profile in one transaction and sets
// user.ID and user.CreatedAt from the database.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	err := store.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash, is_admin, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.IsAdmin,
			user.CreatedAt,
		).Scan(&user.ID, &user.CreatedAt); err != nil {
			return err
		}

		p := user.Profile
		_, err := tx.Exec(ctx, `
			INSERT INTO user_profiles (user_id, bio, location, phone, website, avatar, linkedin, github, twitter)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, user.ID, p.Bio, p.Location, p.Phone, p.Website, avatarOrDefault(p.Avatar), p.LinkedIn, p.GitHub, p.Twitter)
		return err
	})
	if err != nil {
		user.ID = 0
		if cerr := conflictError(err); cerr != nil {
			return cerr
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

func avatarOrDefault(avatar string) string {
	if avatar == "" {
		return auth.DefaultAvatar
	}
	return avatar
}

// GetByID retrieves a user and its profile by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE u.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").With("id", id).Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by exact email match.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE u.email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").Wrap(err)
	}
	return user, nil
}

// GetByUsername retrieves a user by exact username match.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE u.username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").With("username", username).Wrap(err)
	}
	return user, nil
}

// Update writes username, email and every profile field in one
// transaction. A unique violation rolls back both statements.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	err := store.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users SET username = $2, email = $3
			WHERE id = $1
		`, user.ID, user.Username, user.Email)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		p := user.Profile
		_, err = tx.Exec(ctx, `
			UPDATE user_profiles SET
				bio = $2, location = $3, phone = $4, website = $5,
				avatar = $6, linkedin = $7, github = $8, twitter = $9
			WHERE user_id = $1
		`, user.ID, p.Bio, p.Location, p.Phone, p.Website, avatarOrDefault(p.Avatar), p.LinkedIn, p.GitHub, p.Twitter)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("USER_NOT_FOUND").With("id", user.ID).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		if cerr := conflictError(err); cerr != nil {
			return cerr
		}
		return oops.Code("USER_UPDATE_FAILED").With("id", user.ID).Wrap(err)
	}
	return nil
}

// UpdatePassword updates only the password hash for a user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a user. The profile and sessions go with it via
// ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser scans a selectUser row. pgx.ErrNoRows is returned unwrapped.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		u         auth.User
		createdAt time.Time
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &createdAt,
		&u.Profile.Bio, &u.Profile.Location, &u.Profile.Phone, &u.Profile.Website,
		&u.Profile.Avatar, &u.Profile.LinkedIn, &u.Profile.GitHub, &u.Profile.Twitter,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with lookup context
	}
	u.CreatedAt = createdAt.UTC()
	return &u, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
