// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package postgres implements the portfolio repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/folioweb/folio/internal/portfolio"
	"github.com/folioweb/folio/internal/store"
)

// Repository implements portfolio.ContentRepository and
// portfolio.MessageRepository.
type Repository struct {
	pool store.Pool
}

// NewRepository creates a new Repository.
func NewRepository(pool store.Pool) *Repository {
	return &Repository{pool: pool}
}

// HasDefaults reports whether default education rows exist.
func (r *Repository) HasDefaults(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM education WHERE is_default)`).Scan(&exists)
	if err != nil {
		return false, oops.Code("CONTENT_QUERY_FAILED").With("table", "education").Wrap(err)
	}
	return exists, nil
}

// InsertBundle writes every row of b in one transaction.
func (r *Repository) InsertBundle(ctx context.Context, b *portfolio.Bundle) error {
	err := store.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, e := range b.Education {
			if _, err := tx.Exec(ctx, `
				INSERT INTO education (degree, institution, graduation_date, gpa, achievements, is_default)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, e.Degree, e.Institution, e.GraduationDate, e.GPA, e.Achievements, e.IsDefault); err != nil {
				return oops.With("table", "education").Wrap(err)
			}
		}
		for _, w := range b.Experience {
			if _, err := tx.Exec(ctx, `
				INSERT INTO work_experience (title, company, location, start_date, end_date, description, skills, is_default)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, w.Title, w.Company, w.Location, w.StartDate, w.EndDate, w.Description, w.Skills, w.IsDefault); err != nil {
				return oops.With("table", "work_experience").Wrap(err)
			}
		}
		for _, p := range b.Projects {
			if _, err := tx.Exec(ctx, `
				INSERT INTO projects (title, description, image, link, is_default)
				VALUES ($1, $2, $3, $4, $5)
			`, p.Title, p.Description, p.Image, p.Link, p.IsDefault); err != nil {
				return oops.With("table", "projects").Wrap(err)
			}
		}
		for _, c := range b.Certifications {
			if _, err := tx.Exec(ctx, `
				INSERT INTO certifications (name, organization, issued, description, is_default)
				VALUES ($1, $2, $3, $4, $5)
			`, c.Name, c.Organization, c.Date, c.Description, c.IsDefault); err != nil {
				return oops.With("table", "certifications").Wrap(err)
			}
		}
		for _, s := range b.Skills {
			if _, err := tx.Exec(ctx, `
				INSERT INTO skills (category, items, is_default)
				VALUES ($1, $2, $3)
			`, s.Category, s.Items, s.IsDefault); err != nil {
				return oops.With("table", "skills").Wrap(err)
			}
		}
		return nil
	})
	if err != nil {
		return oops.Code("CONTENT_INSERT_FAILED").With("version", b.Version).Wrap(err)
	}
	return nil
}

// Defaults returns all default content rows ordered by id.
func (r *Repository) Defaults(ctx context.Context) (*portfolio.Content, error) {
	var (
		c   portfolio.Content
		err error
	)
	if c.Education, err = collect(ctx, r.pool, "education", `
		SELECT id, degree, institution, graduation_date, gpa, achievements, is_default
		FROM education WHERE is_default ORDER BY id
	`, func(row pgx.Rows, e *portfolio.Education) error {
		return row.Scan(&e.ID, &e.Degree, &e.Institution, &e.GraduationDate, &e.GPA, &e.Achievements, &e.IsDefault)
	}); err != nil {
		return nil, err
	}
	if c.Experience, err = collect(ctx, r.pool, "work_experience", `
		SELECT id, title, company, location, start_date, end_date, description, skills, is_default
		FROM work_experience WHERE is_default ORDER BY id
	`, func(row pgx.Rows, w *portfolio.WorkExperience) error {
		return row.Scan(&w.ID, &w.Title, &w.Company, &w.Location, &w.StartDate, &w.EndDate, &w.Description, &w.Skills, &w.IsDefault)
	}); err != nil {
		return nil, err
	}
	if c.Projects, err = collect(ctx, r.pool, "projects", `
		SELECT id, title, description, image, link, is_default
		FROM projects WHERE is_default ORDER BY id
	`, func(row pgx.Rows, p *portfolio.Project) error {
		return row.Scan(&p.ID, &p.Title, &p.Description, &p.Image, &p.Link, &p.IsDefault)
	}); err != nil {
		return nil, err
	}
	if c.Certifications, err = collect(ctx, r.pool, "certifications", `
		SELECT id, name, organization, issued, description, is_default
		FROM certifications WHERE is_default ORDER BY id
	`, func(row pgx.Rows, cert *portfolio.Certification) error {
		return row.Scan(&cert.ID, &cert.Name, &cert.Organization, &cert.Date, &cert.Description, &cert.IsDefault)
	}); err != nil {
		return nil, err
	}
	if c.Skills, err = collect(ctx, r.pool, "skills", `
		SELECT id, category, items, is_default
		FROM skills WHERE is_default ORDER BY id
	`, func(row pgx.Rows, s *portfolio.Skill) error {
		return row.Scan(&s.ID, &s.Category, &s.Items, &s.IsDefault)
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

// collect runs query and scans every row with scan.
func collect[T any](ctx context.Context, pool store.Pool, table, query string, scan func(pgx.Rows, *T) error, args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("CONTENT_QUERY_FAILED").With("table", table).Wrap(err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, oops.Code("CONTENT_SCAN_FAILED").With("table", table).Wrap(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CONTENT_QUERY_FAILED").With("table", table).Wrap(err)
	}
	return out, nil
}

// CreateMessage stores msg and sets its ID.
func (r *Repository) CreateMessage(ctx context.Context, msg *portfolio.ContactMessage) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, message, created_at, is_read)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, msg.Name, msg.Email, msg.Message, msg.CreatedAt, msg.IsRead).Scan(&msg.ID)
	if err != nil {
		return oops.Code("CONTACT_CREATE_FAILED").Wrap(err)
	}
	return nil
}

// ListMessages returns every message, newest first.
func (r *Repository) ListMessages(ctx context.Context) ([]portfolio.ContactMessage, error) {
	return collect(ctx, r.pool, "contact_messages", `
		SELECT id, name, email, message, created_at, is_read
		FROM contact_messages ORDER BY created_at DESC, id DESC
	`, func(row pgx.Rows, m *portfolio.ContactMessage) error {
		return row.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt, &m.IsRead)
	})
}

// MarkRead sets is_read on a message.
func (r *Repository) MarkRead(ctx context.Context, id int64) error {
	var found bool
	err := r.pool.QueryRow(ctx, `UPDATE contact_messages SET is_read = TRUE WHERE id = $1 RETURNING TRUE`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.With("id", id).Wrap(portfolio.ErrMessageNotFound)
	}
	if err != nil {
		return oops.Code("CONTACT_UPDATE_FAILED").With("id", id).Wrap(err)
	}
	return nil
}

var (
	_ portfolio.ContentRepository = (*Repository)(nil)
	_ portfolio.MessageRepository = (*Repository)(nil)
)
