// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioweb/folio/pkg/errutil"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("USER_NOT_FOUND").
		With("id", 7).
		Errorf("lookup failed")

	errutil.LogError(logger, "profile load failed", err, "route", "/profile")

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "profile load failed", entry["msg"])
	assert.Equal(t, "USER_NOT_FOUND", entry["code"])
	assert.Equal(t, "/profile", entry["route"])
	assert.Contains(t, entry["context"], "id")
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "operation failed", errors.New("standard error"))

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}

func TestCode(t *testing.T) {
	sentinel := errors.New("conflict")
	assert.Equal(t, "AUTH_CONFLICT", errutil.Code(oops.Code("AUTH_CONFLICT").Wrap(sentinel)))
	assert.Equal(t, "", errutil.Code(sentinel))
	assert.Equal(t, "", errutil.Code(nil))
}
