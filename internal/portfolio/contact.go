// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/folioweb/folio/internal/auth"
)

// Contact form limits.
const (
	MaxContactNameLength  = 100
	MaxContactEmailLength = 120
)

// ContactService stores and lists contact messages.
type ContactService struct {
	repo   MessageRepository
	events auth.EventRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewContactService creates a ContactService. Nil events and logger are
// replaced with no-ops.
func NewContactService(repo MessageRepository, events auth.EventRecorder, logger *slog.Logger) (*ContactService, error) {
	if repo == nil {
		return nil, oops.Errorf("message repository is required")
	}
	if events == nil {
		events = nopRecorder{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ContactService{repo: repo, events: events, logger: logger, now: time.Now}, nil
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string) {}

// Submit validates and stores a message from a visitor.
func (s *ContactService) Submit(ctx context.Context, name, email, body string) (*ContactMessage, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	verr := &auth.ValidationError{}
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		verr.Add("name", "This field is required.")
	case n > MaxContactNameLength:
		verr.Add("name", fmt.Sprintf("Field cannot be longer than %d characters.", MaxContactNameLength))
	}
	if err := auth.ValidateEmail(email); err != nil {
		var emailErr *auth.ValidationError
		if errors.As(err, &emailErr) {
			verr.Add("email", emailErr.Fields["email"])
		}
	}
	if strings.TrimSpace(body) == "" {
		verr.Add("message", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	msg := &ContactMessage{
		Name:      name,
		Email:     email,
		Message:   body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		s.events.Record("contact", "failure")
		return nil, oops.Code("CONTACT_SUBMIT_FAILED").Wrap(err)
	}
	s.events.Record("contact", "success")
	s.logger.Info("contact message received", "id", msg.ID)
	return msg, nil
}

// ListMessages returns the inbox, newest first.
func (s *ContactService) ListMessages(ctx context.Context) ([]ContactMessage, error) {
	msgs, err := s.repo.ListMessages(ctx)
	if err != nil {
		return nil, oops.Code("CONTACT_LIST_FAILED").Wrap(err)
	}
	return msgs, nil
}

// Unread counts unread messages in msgs.
func Unread(msgs []ContactMessage) int {
	n := 0
	for _, m := range msgs {
		if !m.IsRead {
			n++
		}
	}
	return n
}

// MarkRead flags a message as read. Marking twice is not an error.
func (s *ContactService) MarkRead(ctx context.Context, id int64) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return oops.Code("CONTACT_NOT_FOUND").With("id", id).Wrap(err)
		}
		return oops.Code("CONTACT_MARK_READ_FAILED").With("id", id).Wrap(err)
	}
	return nil
}
