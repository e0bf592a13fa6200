// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package avatar stores uploaded profile images on the local filesystem.
package avatar

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"golang.org/x/text/unicode/norm"

	"github.com/folioweb/folio/internal/auth"
)

// AllowedExtensions lists the accepted image extensions, lower case.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// DefaultMaxBytes caps a single upload.
const DefaultMaxBytes = 4 << 20

// maxStoredName matches the profile avatar column width.
const maxStoredName = auth.MaxAvatarLength

// SanitizeFilename reduces name to a plain ASCII basename safe to join under
// the upload directory. It returns "" when nothing usable remains.
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r > unicode.MaxASCII:
			continue
		case r == '/' || r == '\\':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	joined := strings.Join(words, "_")

	b.Reset()
	for _, r := range joined {
		if r == '_' || r == '.' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// allowedExt reports whether name ends in an accepted image extension.
func allowedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// FileStore writes avatars into a single directory.
type FileStore struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithMaxBytes overrides the per-upload size cap.
func WithMaxBytes(n int64) Option {
	return func(s *FileStore) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewFileStore creates the upload directory if needed.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if dir == "" {
		return nil, oops.Code("AVATAR_DIR_MISSING").Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, oops.Code("AVATAR_DIR_CREATE_FAILED").With("dir", dir).Wrap(err)
	}
	s := &FileStore{dir: dir, maxBytes: DefaultMaxBytes, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the upload directory.
func (s *FileStore) Dir() string { return s.dir }

// storedName prefixes name with a fresh ULID so uploads never collide, and
// shortens the base name to fit the avatar column.
func storedName(name string) string {
	prefix := ulid.Make().String() + "_"
	if room := maxStoredName - len(prefix); len(name) > room {
		ext := filepath.Ext(name)
		name = strings.TrimRight(name[:room-len(ext)], "._") + ext
	}
	return prefix + name
}

// Save writes content under a unique name derived from the sanitized
// filename and returns that name.
func (s *FileStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", auth.NewValidationError("avatar", "Invalid file name.")
	}
	if !allowedExt(name) {
		return "", auth.NewValidationError("avatar", "File does not have an approved extension: jpg, jpeg, png, gif, webp")
	}
	if err := ctx.Err(); err != nil {
		return "", oops.Code("AVATAR_SAVE_CANCELLED").Wrap(err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", oops.Code("AVATAR_SAVE_FAILED").With("dir", s.dir).Wrap(err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, io.LimitReader(content, s.maxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", oops.Code("AVATAR_SAVE_FAILED").With("name", name).Wrap(err)
	}
	if n > s.maxBytes {
		return "", auth.NewValidationError("avatar", "File is too large.")
	}

	name = storedName(name)
	dest := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", oops.Code("AVATAR_SAVE_FAILED").With("name", name).Wrap(err)
	}
	s.logger.Info("avatar stored", "name", name, "bytes", n)
	return name, nil
}

var _ auth.AvatarStore = (*FileStore)(nil)
