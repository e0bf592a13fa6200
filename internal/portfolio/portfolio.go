// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package portfolio holds the public portfolio content and the contact
// inbox.
//
// Content rows (education, experience, projects, certifications, skills) are
// reference data loaded from a versioned YAML bundle by [Seed]. Contact
// messages are written by visitors through [ContactService].
package portfolio

import (
	"context"
	"errors"
	"time"
)

// ErrMessageNotFound is returned when a contact message does not exist.
var ErrMessageNotFound = errors.New("message not found")

// Education is a degree entry.
type Education struct {
	ID             int64  `json:"-" yaml:"-"`
	Degree         string `json:"degree" yaml:"degree" jsonschema:"minLength=1,maxLength=100"`
	Institution    string `json:"institution" yaml:"institution" jsonschema:"minLength=1,maxLength=100"`
	GraduationDate string `json:"graduation_date" yaml:"graduation_date" jsonschema:"minLength=1,maxLength=50"`
	GPA            string `json:"gpa,omitempty" yaml:"gpa,omitempty" jsonschema:"maxLength=10"`
	Achievements   string `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	IsDefault      bool   `json:"-" yaml:"-"`
}

// WorkExperience is a job entry.
type WorkExperience struct {
	ID          int64  `json:"-" yaml:"-"`
	Title       string `json:"title" yaml:"title" jsonschema:"minLength=1,maxLength=100"`
	Company     string `json:"company" yaml:"company" jsonschema:"minLength=1,maxLength=100"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty" jsonschema:"maxLength=100"`
	StartDate   string `json:"start_date" yaml:"start_date" jsonschema:"minLength=1,maxLength=50"`
	EndDate     string `json:"end_date,omitempty" yaml:"end_date,omitempty" jsonschema:"maxLength=50"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Skills      string `json:"skills,omitempty" yaml:"skills,omitempty"`
	IsDefault   bool   `json:"-" yaml:"-"`
}

// Project is a portfolio project.
type Project struct {
	ID          int64  `json:"-" yaml:"-"`
	Title       string `json:"title" yaml:"title" jsonschema:"minLength=1,maxLength=100"`
	Description string `json:"description" yaml:"description" jsonschema:"minLength=1"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty" jsonschema:"maxLength=120"`
	Link        string `json:"link,omitempty" yaml:"link,omitempty" jsonschema:"maxLength=200"`
	IsDefault   bool   `json:"-" yaml:"-"`
}

// Certification is a certificate or course.
type Certification struct {
	ID           int64  `json:"-" yaml:"-"`
	Name         string `json:"name" yaml:"name" jsonschema:"minLength=1,maxLength=100"`
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty" jsonschema:"maxLength=100"`
	Date         string `json:"date,omitempty" yaml:"date,omitempty" jsonschema:"maxLength=50"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	IsDefault    bool   `json:"-" yaml:"-"`
}

// Skill is a category with a comma separated list of items.
type Skill struct {
	ID        int64  `json:"-" yaml:"-"`
	Category  string `json:"category" yaml:"category" jsonschema:"minLength=1,maxLength=100"`
	Items     string `json:"items" yaml:"items" jsonschema:"minLength=1"`
	IsDefault bool   `json:"-" yaml:"-"`
}

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
	IsRead    bool
}

// Content is every default content row, as shown on the landing page.
type Content struct {
	Education      []Education
	Experience     []WorkExperience
	Projects       []Project
	Certifications []Certification
	Skills         []Skill
}

// ContentRepository reads and writes portfolio content.
type ContentRepository interface {
	// HasDefaults reports whether default education rows exist.
	HasDefaults(ctx context.Context) (bool, error)
	// InsertBundle stores every row of b as default content in one
	// transaction.
	InsertBundle(ctx context.Context, b *Bundle) error
	// Defaults returns all default content rows in insertion order.
	Defaults(ctx context.Context) (*Content, error)
}

// MessageRepository persists contact messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *ContactMessage) error
	// ListMessages returns messages newest first.
	ListMessages(ctx context.Context) ([]ContactMessage, error)
	// MarkRead sets IsRead. Returns ErrMessageNotFound for an unknown id.
	MarkRead(ctx context.Context, id int64) error
}
