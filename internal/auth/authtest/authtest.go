// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package authtest provides in-memory implementations of the auth
// repositories and collaborators for tests.
package authtest

import (
	"context"
	"io"
	"path"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/folioweb/folio/internal/auth"
)

// Users is an in-memory auth.UserRepository with the same uniqueness
// behavior as the PostgreSQL store.
type Users struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]auth.User
}

// NewUsers creates an empty Users store.
func NewUsers() *Users {
	return &Users{byID: make(map[int64]auth.User)}
}

func (r *Users) conflict(u *auth.User) error {
	for id, other := range r.byID {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return oops.Code("AUTH_CONFLICT").With("field", "username").Wrap(auth.ErrConflict)
		}
		if other.Email == u.Email {
			return oops.Code("AUTH_CONFLICT").With("field", "email").Wrap(auth.ErrConflict)
		}
	}
	return nil
}

func (r *Users) Create(_ context.Context, u *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return err
	}
	r.nextID++
	u.ID = r.nextID
	r.byID[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id int64) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &u, nil
}

func (r *Users) find(match func(auth.User) bool) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			return &u, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *Users) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	return r.find(func(u auth.User) bool { return u.Email == email })
}

func (r *Users) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	return r.find(func(u auth.User) bool { return u.Username == username })
}

func (r *Users) Update(_ context.Context, u *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return auth.ErrNotFound
	}
	if err := r.conflict(u); err != nil {
		return err
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *Users) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = hash
	r.byID[id] = u
	return nil
}

func (r *Users) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return auth.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// Sessions is an in-memory auth.WebSessionRepository.
type Sessions struct {
	mu   sync.Mutex
	byID map[ulid.ULID]auth.WebSession
}

// NewSessions creates an empty Sessions store.
func NewSessions() *Sessions {
	return &Sessions{byID: make(map[ulid.ULID]auth.WebSession)}
}

// Len returns the number of stored sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Sessions) Create(_ context.Context, s *auth.WebSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = *s
	return nil
}

func (r *Sessions) GetByTokenHash(_ context.Context, hash string) (*auth.WebSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.TokenHash == hash {
			return &s, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *Sessions) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	s.LastSeenAt = lastSeen
	r.byID[id] = s
	return nil
}

func (r *Sessions) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return auth.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Sessions) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.byID {
		if s.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *Sessions) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := time.Now()
	for id, s := range r.byID {
		if s.IsExpiredAt(now) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// Mail is a message captured by Mailer.
type Mail struct {
	To      []string
	Subject string
	Body    string
}

// Mailer records sent messages. Err, when set, is returned from Send and
// nothing is recorded.
type Mailer struct {
	mu   sync.Mutex
	sent []Mail
	Err  error
}

func (m *Mailer) Send(_ context.Context, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, Mail{To: append([]string(nil), to...), Subject: subject, Body: body})
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *Mailer) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.sent...)
}

// Avatars stores uploads in memory keyed by the base of the client filename.
type Avatars struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func (a *Avatars) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	name := path.Base(filename)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Files == nil {
		a.Files = make(map[string][]byte)
	}
	a.Files[name] = data
	return name, nil
}
