// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package mail

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/folioweb/folio/pkg/errutil"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

var testConfig = Config{Host: "smtp.example.com", Port: 2525, From: "noreply@example.com"}

func TestSMTPMailer_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("builds headers", func(t *testing.T) {
		d := &fakeDialer{}
		m := NewSMTPMailer(testConfig, nil)
		m.dialer = d

		require.NoError(t, m.Send(ctx, []string{"alice@example.com", " "}, "Password Reset Request", "hello"))
		require.Len(t, d.sent, 1)
		assert.Equal(t, []string{"noreply@example.com"}, d.sent[0].GetHeader("From"))
		assert.Equal(t, []string{"alice@example.com"}, d.sent[0].GetHeader("To"))
		assert.Equal(t, []string{"Password Reset Request"}, d.sent[0].GetHeader("Subject"))
	})

	t.Run("dial failure is coded", func(t *testing.T) {
		m := NewSMTPMailer(testConfig, nil)
		m.dialer = &fakeDialer{err: errors.New("connection refused")}

		err := m.Send(ctx, []string{"alice@example.com"}, "s", "b")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MAIL_SEND_FAILED")
	})

	t.Run("no recipients", func(t *testing.T) {
		m := NewSMTPMailer(testConfig, nil)
		m.dialer = &fakeDialer{}
		errutil.AssertErrorCode(t, m.Send(ctx, nil, "s", "b"), "MAIL_NO_RECIPIENTS")
	})

	t.Run("cancelled context", func(t *testing.T) {
		d := &fakeDialer{}
		m := NewSMTPMailer(testConfig, nil)
		m.dialer = d

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.Error(t, m.Send(cctx, []string{"alice@example.com"}, "s", "b"))
		assert.Empty(t, d.sent)
	})

	t.Run("unconfigured skips", func(t *testing.T) {
		var buf bytes.Buffer
		d := &fakeDialer{}
		m := NewSMTPMailer(Config{}, slog.New(slog.NewJSONHandler(&buf, nil)))
		m.dialer = d

		require.NoError(t, m.Send(ctx, []string{"alice@example.com"}, "s", "b"))
		assert.Empty(t, d.sent)
		assert.Contains(t, buf.String(), "mail config missing")
	})
}

func TestNew(t *testing.T) {
	assert.IsType(t, &SMTPMailer{}, New(testConfig, nil))
	assert.IsType(t, &LogMailer{}, New(Config{}, nil))
}

func TestLogMailer_Send(t *testing.T) {
	const body = "https://folio.example.com/reset_password/secret-token"

	t.Run("info level keeps the body out of the log", func(t *testing.T) {
		var buf bytes.Buffer
		m := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

		require.NoError(t, m.Send(context.Background(), []string{"alice@example.com"}, "Subject", body))
		assert.Contains(t, buf.String(), "Subject")
		assert.Contains(t, buf.String(), `"recipients":1`)
		assert.NotContains(t, buf.String(), "secret-token")
		assert.NotContains(t, buf.String(), "alice@example.com")
	})

	t.Run("debug level shows the body", func(t *testing.T) {
		var buf bytes.Buffer
		m := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

		require.NoError(t, m.Send(context.Background(), []string{"alice@example.com"}, "Subject", body))
		assert.Contains(t, buf.String(), "secret-token")
		assert.Contains(t, buf.String(), "alice@example.com")
	})
}
