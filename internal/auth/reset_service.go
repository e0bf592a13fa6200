// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/oops"
)

// Reset mail content.
const (
	ResetMailSubject = "Password Reset Request"
	resetMailBody    = "To reset your password, visit the following link:\n%s\n\n" +
		"If you did not make this request, simply ignore this email and no changes will be made.\n"
)

// Mailer delivers a plain-text message.
type Mailer interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// EventRecorder counts auth events by outcome.
type EventRecorder interface {
	Record(event, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string) {}

// PasswordResetService runs the emailed-token password reset flow.
type PasswordResetService struct {
	creds  *CredentialStore
	tokens *TokenService
	mailer Mailer
	events EventRecorder
	logger *slog.Logger
}

// NewPasswordResetService creates a new PasswordResetService.
// A nil recorder or logger is replaced by a no-op.
func NewPasswordResetService(
	creds *CredentialStore,
	tokens *TokenService,
	mailer Mailer,
	events EventRecorder,
	logger *slog.Logger,
) (*PasswordResetService, error) {
	if creds == nil {
		return nil, oops.Errorf("credential store is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	if mailer == nil {
		return nil, oops.Errorf("mailer is required")
	}
	if events == nil {
		events = nopRecorder{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PasswordResetService{
		creds:  creds,
		tokens: tokens,
		mailer: mailer,
		events: events,
		logger: logger,
	}, nil
}

// ResetLink builds the absolute link mailed to the user.
func ResetLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/reset_password/" + token
}

// RequestReset mails a reset link to the user registered under email.
// An unknown email returns an error wrapping ErrNotFound and sends nothing.
// A delivery failure is logged and counted but does not fail the request.
func (s *PasswordResetService) RequestReset(ctx context.Context, email, baseURL string) error {
	user, err := s.creds.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("RESET_NO_ACCOUNT").Wrap(ErrNotFound)
		}
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, err := s.tokens.Mint(user.ID)
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "mint token").
			With("user_id", user.ID).
			Wrap(err)
	}

	body := fmt.Sprintf(resetMailBody, ResetLink(baseURL, token))
	if err := s.mailer.Send(ctx, []string{user.Email}, ResetMailSubject, body); err != nil {
		s.events.Record("mail_send", "failure")
		s.logger.ErrorContext(ctx, "reset mail not delivered", "user_id", user.ID, "error", err)
		return nil
	}

	s.events.Record("mail_send", "success")
	s.logger.InfoContext(ctx, "reset mail sent", "user_id", user.ID)
	return nil
}

// ValidateToken returns the user a reset token was minted for. Any
// verification failure, or a user deleted since minting, returns an error
// wrapping ErrInvalidOrExpiredToken.
func (s *PasswordResetService) ValidateToken(ctx context.Context, token string) (*User, error) {
	userID, ok := s.tokens.Verify(token)
	if !ok {
		return nil, oops.Code("RESET_TOKEN_INVALID").Wrap(ErrInvalidOrExpiredToken)
	}

	user, err := s.creds.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("RESET_TOKEN_INVALID").
				With("user_id", userID).
				Wrap(ErrInvalidOrExpiredToken)
		}
		return nil, oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}
	return user, nil
}

// ResetPassword re-verifies token and overwrites the user's password.
// No session is created; the user logs in afterwards.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) (*User, error) {
	user, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.creds.SetPassword(ctx, user, newPassword); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("RESET_TOKEN_INVALID").
				With("user_id", user.ID).
				Wrap(ErrInvalidOrExpiredToken)
		}
		return nil, oops.Code("RESET_PASSWORD_FAILED").
			With("user_id", user.ID).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID)
	return user, nil
}
