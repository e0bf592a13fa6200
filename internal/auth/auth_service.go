// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Service provides login, session resolution and logout.
type Service struct {
	creds       *CredentialStore
	sessions    WebSessionRepository
	logger      *slog.Logger
	sessionTTL  time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSessionTTL sets the server-side bound of an ephemeral session.
func WithSessionTTL(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithRememberTTL sets the lifetime of a remembered session.
func WithRememberTTL(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.rememberTTL = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceClock overrides the time source.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewAuthService creates a new Service.
func NewAuthService(creds *CredentialStore, sessions WebSessionRepository, opts ...ServiceOption) (*Service, error) {
	if creds == nil {
		return nil, oops.Errorf("credential store is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session repository is required")
	}
	s := &Service{
		creds:       creds,
		sessions:    sessions,
		logger:      slog.New(slog.DiscardHandler),
		sessionTTL:  SessionTokenExpiry,
		rememberTTL: RememberTokenExpiry,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SessionTTL returns the lifetime for a session with the given remember flag.
func (s *Service) SessionTTL(remember bool) time.Duration {
	if remember {
		return s.rememberTTL
	}
	return s.sessionTTL
}

// dummyPasswordHash is verified when no user matches the email so that both
// failure paths cost one argon2id computation.
//
//nolint:gosec // G101: not a credential, never matches any password.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Login checks credentials and creates a web session.
// Returns the session, the plaintext cookie token, and any error.
// An unknown email and a wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string, remember bool, userAgent, ipAddress string) (*WebSession, string, error) {
	user, lookupErr := s.creds.Users().GetByEmail(ctx, email)
	if lookupErr != nil && !errors.Is(lookupErr, ErrNotFound) {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	if user == nil {
		_, _ = s.creds.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing only
		s.logger.InfoContext(ctx, "login failed", "reason", "unknown_email")
		return nil, "", invalidCredentials()
	}
	if !s.creds.VerifyPassword(user, password) {
		s.logger.InfoContext(ctx, "login failed", "reason", "bad_password", "user_id", user.ID)
		return nil, "", invalidCredentials()
	}

	s.creds.Upgrade(ctx, user, password)

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	expiresAt := s.now().Add(s.SessionTTL(remember))
	session, err := NewWebSession(user.ID, tokenHash, remember, userAgent, ipAddress, expiresAt)
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "create web session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("user_id", user.ID).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID, "remember", remember)
	return session, token, nil
}

func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
}

// Authenticate resolves a cookie token to its user and session and records
// the access time. Returns an error wrapping ErrNotAuthenticated when the
// token is empty, unknown, expired, or its user no longer exists.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, *WebSession, error) {
	if token == "" {
		return nil, nil, oops.Code("SESSION_TOKEN_EMPTY").Wrap(ErrNotAuthenticated)
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, oops.Code("SESSION_INVALID").Wrap(ErrNotAuthenticated)
		}
		return nil, nil, oops.Code("SESSION_VALIDATE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	now := s.now()
	if session.IsExpiredAt(now) {
		_ = s.sessions.Delete(ctx, session.ID) //nolint:errcheck // expired rows are also swept by DeleteExpired
		return nil, nil, oops.Code("SESSION_EXPIRED").Wrap(ErrNotAuthenticated)
	}

	user, err := s.creds.Users().GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, oops.Code("SESSION_USER_GONE").
				With("user_id", session.UserID).
				Wrap(ErrNotAuthenticated)
		}
		return nil, nil, oops.Code("SESSION_VALIDATE_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	if err := s.sessions.UpdateLastSeen(ctx, session.ID, now); err != nil {
		s.logger.WarnContext(ctx, "session last-seen update failed", "session_id", session.ID.String(), "error", err)
	} else {
		session.LastSeenAt = now
	}

	return user, session, nil
}

// Logout deletes the session behind token. Unknown or empty tokens are not
// an error, so logging out twice is harmless.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			With("session_id", session.ID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "logout", "user_id", session.UserID)
	return nil
}

// PurgeExpired removes expired sessions and returns how many were deleted.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code("SESSION_PURGE_FAILED").Wrap(err)
	}
	return n, nil
}
