// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/samber/oops"
)

// ProfileUpdate carries the submitted profile form.
type ProfileUpdate struct {
	Username string
	Email    string
	Bio      string
	Location string
	Phone    string
	Website  string
	LinkedIn string
	GitHub   string
	Twitter  string
}

// ProfileUpdateFrom pre-fills a ProfileUpdate with the user's current values.
func ProfileUpdateFrom(u *User) ProfileUpdate {
	return ProfileUpdate{
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Profile.Bio,
		Location: u.Profile.Location,
		Phone:    u.Profile.Phone,
		Website:  u.Profile.Website,
		LinkedIn: u.Profile.LinkedIn,
		GitHub:   u.Profile.GitHub,
		Twitter:  u.Profile.Twitter,
	}
}

// AvatarUpload is an uploaded image with its client-supplied filename.
type AvatarUpload struct {
	Filename string
	Content  io.Reader
}

// AvatarStore persists avatar images. Save returns the stored reference, or a
// *ValidationError when the filename is unusable.
type AvatarStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
}

// ProfileService applies profile edits.
type ProfileService struct {
	users   UserRepository
	avatars AvatarStore
	logger  *slog.Logger
}

// NewProfileService creates a ProfileService. A nil logger discards output.
func NewProfileService(users UserRepository, avatars AvatarStore, logger *slog.Logger) (*ProfileService, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if avatars == nil {
		return nil, oops.Errorf("avatar store is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProfileService{users: users, avatars: avatars, logger: logger}, nil
}

// Validate checks every field of the update and collects all failures.
func (u ProfileUpdate) Validate() error {
	verr := &ValidationError{}
	validateUsername(verr, u.Username)
	validateEmail(verr, u.Email)
	maxLen(verr, "location", u.Location, MaxLocationLength)
	maxLen(verr, "phone", u.Phone, MaxPhoneLength)
	maxLen(verr, "website", u.Website, MaxWebsiteLength)
	maxLen(verr, "linkedin", u.LinkedIn, MaxSocialLength)
	maxLen(verr, "github", u.GitHub, MaxSocialLength)
	maxLen(verr, "twitter", u.Twitter, MaxSocialLength)
	return verr.OrNil()
}

func maxLen(verr *ValidationError, field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		verr.Add(field, fmt.Sprintf("Field cannot be longer than %d characters.", limit))
	}
}

// UpdateProfile validates the update, stores the avatar if one was uploaded,
// and writes user and profile in a single transaction. On ErrConflict nothing
// is written and user is left as it was. Previous avatar files are kept.
func (s *ProfileService) UpdateProfile(ctx context.Context, user *User, upd ProfileUpdate, avatar *AvatarUpload) (*User, error) {
	if user == nil {
		return nil, oops.Code("PROFILE_UPDATE_FAILED").Wrap(ErrNotAuthenticated)
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	next := *user
	next.Username = upd.Username
	next.Email = upd.Email
	next.Profile.Bio = upd.Bio
	next.Profile.Location = upd.Location
	next.Profile.Phone = upd.Phone
	next.Profile.Website = upd.Website
	next.Profile.LinkedIn = upd.LinkedIn
	next.Profile.GitHub = upd.GitHub
	next.Profile.Twitter = upd.Twitter

	if avatar != nil && avatar.Filename != "" {
		stored, err := s.avatars.Save(ctx, avatar.Filename, avatar.Content)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				return nil, err
			}
			return nil, oops.Code("PROFILE_UPDATE_FAILED").
				With("operation", "save avatar").
				With("user_id", user.ID).
				Wrap(err)
		}
		next.Profile.Avatar = stored
	}

	if err := s.users.Update(ctx, &next); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, oops.Code("PROFILE_UPDATE_FAILED").
			With("operation", "update user").
			With("user_id", user.ID).
			Wrap(err)
	}

	*user = next
	s.logger.InfoContext(ctx, "profile updated", "user_id", user.ID, "avatar_changed", avatar != nil && avatar.Filename != "")
	return user, nil
}
