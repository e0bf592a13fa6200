// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package mail delivers outgoing email.
package mail

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/gomail.v2"

	"github.com/folioweb/folio/internal/auth"
)

// Config holds SMTP settings.
type Config struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// Configured reports whether enough settings are present to reach a server.
func (c Config) Configured() bool {
	return c.Host != "" && c.From != ""
}

// dialer is the subset of *gomail.Dialer used by SMTPMailer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends plain-text mail through an SMTP server.
type SMTPMailer struct {
	cfg    Config
	dialer dialer
	logger *slog.Logger
}

// NewSMTPMailer creates an SMTPMailer. A nil logger discards output.
func NewSMTPMailer(cfg Config, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// Send delivers one message to all recipients. An unconfigured mailer logs
// a warning and sends nothing.
func (m *SMTPMailer) Send(ctx context.Context, recipients []string, subject, body string) error {
	if !m.cfg.Configured() {
		m.logger.Warn("mail config missing, skip send", "subject", subject)
		return nil
	}

	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	if len(to) == 0 {
		return oops.Code("MAIL_NO_RECIPIENTS").With("subject", subject).Errorf("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return oops.Code("MAIL_SEND_CANCELLED").Wrap(err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("host", m.cfg.Host).
			With("subject", subject).
			Wrap(err)
	}

	m.logger.Info("mail sent", "recipients", len(to), "subject", subject)
	return nil
}

// LogMailer writes messages to the log instead of sending them. It is used
// in development when no SMTP server is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogMailer{logger: logger}
}

// Send logs the message. The body can carry a live reset link, so it is
// only logged at debug level.
func (m *LogMailer) Send(ctx context.Context, recipients []string, subject, body string) error {
	m.logger.InfoContext(ctx, "mail not sent, no smtp server configured",
		"recipients", len(recipients),
		"subject", subject)
	m.logger.DebugContext(ctx, "unsent mail body",
		"to", recipients,
		"body", body)
	return nil
}

// New returns an SMTPMailer when cfg is usable and a LogMailer otherwise.
func New(cfg Config, logger *slog.Logger) auth.Mailer {
	if cfg.Configured() {
		return NewSMTPMailer(cfg, logger)
	}
	return NewLogMailer(logger)
}

var (
	_ auth.Mailer = (*SMTPMailer)(nil)
	_ auth.Mailer = (*LogMailer)(nil)
)
