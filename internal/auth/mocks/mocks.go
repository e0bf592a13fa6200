// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package mocks provides testify mocks for the auth interfaces.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/folioweb/folio/internal/auth"
)

// TestingT is the subset of *testing.T the constructors need.
type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t TestingT) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockUserRepository mocks auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock that asserts its expectations on cleanup.
func NewMockUserRepository(t TestingT) *MockUserRepository {
	m := &MockUserRepository{}
	register(&m.Mock, t)
	return m
}

func userResult(ret mock.Arguments) (*auth.User, error) {
	var u *auth.User
	if v := ret.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, ret.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return userResult(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return userResult(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return userResult(m.Called(ctx, username))
}

func (m *MockUserRepository) Update(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockWebSessionRepository mocks auth.WebSessionRepository.
type MockWebSessionRepository struct {
	mock.Mock
}

// NewMockWebSessionRepository creates a mock that asserts its expectations on cleanup.
func NewMockWebSessionRepository(t TestingT) *MockWebSessionRepository {
	m := &MockWebSessionRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockWebSessionRepository) Create(ctx context.Context, session *auth.WebSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockWebSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.WebSession, error) {
	ret := m.Called(ctx, tokenHash)
	var s *auth.WebSession
	if v := ret.Get(0); v != nil {
		s = v.(*auth.WebSession)
	}
	return s, ret.Error(1)
}

func (m *MockWebSessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	return m.Called(ctx, id, lastSeen).Error(0)
}

func (m *MockWebSessionRepository) Delete(ctx context.Context, id ulid.ULID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWebSessionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockWebSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

// MockPasswordHasher mocks auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock that asserts its expectations on cleanup.
func NewMockPasswordHasher(t TestingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	register(&m.Mock, t)
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	ret := m.Called(password)
	return ret.String(0), ret.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	ret := m.Called(password, hash)
	return ret.Bool(0), ret.Error(1)
}

func (m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	return m.Called(hash).Bool(0)
}

// MockMailer mocks auth.Mailer.
type MockMailer struct {
	mock.Mock
}

// NewMockMailer creates a mock that asserts its expectations on cleanup.
func NewMockMailer(t TestingT) *MockMailer {
	m := &MockMailer{}
	register(&m.Mock, t)
	return m
}

func (m *MockMailer) Send(ctx context.Context, recipients []string, subject, body string) error {
	return m.Called(ctx, recipients, subject, body).Error(0)
}

// MockAvatarStore mocks auth.AvatarStore.
type MockAvatarStore struct {
	mock.Mock
}

// NewMockAvatarStore creates a mock that asserts its expectations on cleanup.
func NewMockAvatarStore(t TestingT) *MockAvatarStore {
	m := &MockAvatarStore{}
	register(&m.Mock, t)
	return m
}

func (m *MockAvatarStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	ret := m.Called(ctx, filename, content)
	return ret.String(0), ret.Error(1)
}

// MockEventRecorder mocks auth.EventRecorder.
type MockEventRecorder struct {
	mock.Mock
}

// NewMockEventRecorder creates a mock that asserts its expectations on cleanup.
func NewMockEventRecorder(t TestingT) *MockEventRecorder {
	m := &MockEventRecorder{}
	register(&m.Mock, t)
	return m
}

func (m *MockEventRecorder) Record(event, outcome string) {
	m.Called(event, outcome)
}
