// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioweb/folio/internal/portfolio"
	"github.com/folioweb/folio/pkg/errutil"
)

func TestNewSeedCmd_TimeoutFlag(t *testing.T) {
	cmd := NewSeedCmd()

	flag := cmd.Flags().Lookup("timeout")
	require.NotNil(t, flag)
	assert.Equal(t, defaultCommandTimeout.String(), flag.DefValue)

	require.NoError(t, cmd.ParseFlags([]string{"--timeout", "5s"}))
	timeout, err := cmd.Flags().GetDuration("timeout")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestValidateContent_BuiltIn(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	bundle, err := portfolio.DefaultBundle()
	require.NoError(t, err)

	out, _, err := execute(t, "validate-content")
	require.NoError(t, err, "validate-content should work without DATABASE_URL")
	assert.Contains(t, out, "built-in content")
	assert.Contains(t, out, bundle.Version)
}

func TestValidateContent_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, portfolio.DefaultBundleYAML(), 0o600))

	out, _, err := execute(t, "validate-content", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
}

func TestValidateContent_RejectsBadBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0.0\"\neducation: nope\n"), 0o600))

	_, errOut, err := execute(t, "validate-content", "--file", path)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONTENT_SCHEMA_INVALID")
	assert.NotEmpty(t, errOut)
}

func TestValidateContent_MissingFile(t *testing.T) {
	_, _, err := execute(t, "validate-content", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONTENT_READ_FAILED")
}
