// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package portfoliotest provides in-memory portfolio repositories for tests.
package portfoliotest

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/oops"

	"github.com/folioweb/folio/internal/portfolio"
)

// Memory implements portfolio.ContentRepository and
// portfolio.MessageRepository.
type Memory struct {
	mu       sync.Mutex
	content  portfolio.Content
	messages []portfolio.ContactMessage
	nextID   int64

	// Err, when set, is returned by every method.
	Err error
}

// NewMemory returns an empty repository.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// HasDefaults implements portfolio.ContentRepository.
func (m *Memory) HasDefaults(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return slices.ContainsFunc(m.content.Education, func(e portfolio.Education) bool { return e.IsDefault }), nil
}

// InsertBundle implements portfolio.ContentRepository.
func (m *Memory) InsertBundle(_ context.Context, b *portfolio.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, e := range b.Education {
		e.ID = m.id()
		m.content.Education = append(m.content.Education, e)
	}
	for _, e := range b.Experience {
		e.ID = m.id()
		m.content.Experience = append(m.content.Experience, e)
	}
	for _, p := range b.Projects {
		p.ID = m.id()
		m.content.Projects = append(m.content.Projects, p)
	}
	for _, c := range b.Certifications {
		c.ID = m.id()
		m.content.Certifications = append(m.content.Certifications, c)
	}
	for _, s := range b.Skills {
		s.ID = m.id()
		m.content.Skills = append(m.content.Skills, s)
	}
	return nil
}

// Defaults implements portfolio.ContentRepository.
func (m *Memory) Defaults(context.Context) (*portfolio.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return &portfolio.Content{
		Education:      slices.Clone(m.content.Education),
		Experience:     slices.Clone(m.content.Experience),
		Projects:       slices.Clone(m.content.Projects),
		Certifications: slices.Clone(m.content.Certifications),
		Skills:         slices.Clone(m.content.Skills),
	}, nil
}

// CreateMessage implements portfolio.MessageRepository.
func (m *Memory) CreateMessage(_ context.Context, msg *portfolio.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	msg.ID = m.id()
	m.messages = append(m.messages, *msg)
	return nil
}

// ListMessages implements portfolio.MessageRepository.
func (m *Memory) ListMessages(context.Context) ([]portfolio.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := slices.Clone(m.messages)
	slices.Reverse(out)
	return out, nil
}

// MarkRead implements portfolio.MessageRepository.
func (m *Memory) MarkRead(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.messages {
		if m.messages[i].ID == id {
			m.messages[i].IsRead = true
			return nil
		}
	}
	return oops.With("id", id).Wrap(portfolio.ErrMessageNotFound)
}

var (
	_ portfolio.ContentRepository = (*Memory)(nil)
	_ portfolio.MessageRepository = (*Memory)(nil)
)
