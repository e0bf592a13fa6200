// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package portfolio_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioweb/folio/internal/auth"
	"github.com/folioweb/folio/internal/auth/mocks"
	"github.com/folioweb/folio/internal/portfolio"
	"github.com/folioweb/folio/internal/portfolio/portfoliotest"
	"github.com/folioweb/folio/pkg/errutil"
)

func TestContactService(t *testing.T) {
	ctx := context.Background()

	t.Run("submit list and mark read", func(t *testing.T) {
		repo := portfoliotest.NewMemory()
		events := mocks.NewMockEventRecorder(t)
		events.On("Record", "contact", "success").Twice()
		svc, err := portfolio.NewContactService(repo, events, nil)
		require.NoError(t, err)

		first, err := svc.Submit(ctx, " Bob ", "bob@example.com", "Hello there")
		require.NoError(t, err)
		assert.Equal(t, "Bob", first.Name)
		assert.False(t, first.CreatedAt.IsZero())
		_, err = svc.Submit(ctx, "Carol", "carol@example.com", "Hi")
		require.NoError(t, err)

		msgs, err := svc.ListMessages(ctx)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "Carol", msgs[0].Name)
		assert.Equal(t, 2, portfolio.Unread(msgs))

		require.NoError(t, svc.MarkRead(ctx, first.ID))
		require.NoError(t, svc.MarkRead(ctx, first.ID))
		msgs, err = svc.ListMessages(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, portfolio.Unread(msgs))
	})

	t.Run("invalid input", func(t *testing.T) {
		svc, err := portfolio.NewContactService(portfoliotest.NewMemory(), nil, nil)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, strings.Repeat("n", 101), "not-an-email", "  ")
		var verr *auth.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "name")
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "message")
	})

	t.Run("unknown message", func(t *testing.T) {
		svc, err := portfolio.NewContactService(portfoliotest.NewMemory(), nil, nil)
		require.NoError(t, err)

		err = svc.MarkRead(ctx, 404)
		assert.True(t, errors.Is(err, portfolio.ErrMessageNotFound))
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := portfoliotest.NewMemory()
		repo.Err = errors.New("db down")
		svc, err := portfolio.NewContactService(repo, nil, nil)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, "Bob", "bob@example.com", "Hello")
		errutil.AssertErrorCode(t, err, "CONTACT_SUBMIT_FAILED")
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := portfolio.NewContactService(nil, nil, nil)
		assert.Error(t, err)
	})
}
