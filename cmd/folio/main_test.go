// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioweb/folio/pkg/errutil"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "migrate", "seed", "validate-content", "user"} {
		assert.Contains(t, out, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_LongDescription(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "folio", cmd.Use)
	assert.Contains(t, cmd.Long, "portfolio")
	assert.Contains(t, cmd.Long, "password reset")
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env@localhost/folio")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := NewRootCmd()
	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NoError(t, serve.ParseFlags([]string{"--addr", "0.0.0.0:9000", "--log-level", "debug"}))

	cfg, err := loadConfig(serve)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://env@localhost/folio", cfg.Database.URL)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr, "unset flags keep the default")
}

func TestLoadConfig_ReadsConfigFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  url: postgres://file@localhost/folio\nhttp:\n  addr: 127.0.0.1:7000\n"), 0o600))

	root := NewRootCmd()
	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NoError(t, serve.ParseFlags([]string{"--config", path}))

	cfg, err := loadConfig(serve)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file@localhost/folio", cfg.Database.URL)
	assert.Equal(t, "127.0.0.1:7000", cfg.HTTP.Addr)
}

func TestLoadConfig_DiscoversXDGConfigFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	path := filepath.Join(base, "folio", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("database:\n  url: postgres://xdg@localhost/folio\n"), 0o600))

	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "postgres://xdg@localhost/folio", cfg.Database.URL)
}

func TestNewLogger_RejectsUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "migrate", "--database-url", "postgres://x@localhost/folio", "--log-format", "xml")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "LOG_FORMAT_INVALID")
}

func TestDatabaseCommands_RequireDatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"migrate", []string{"migrate"}},
		{"migrate up", []string{"migrate", "up"}},
		{"migrate version", []string{"migrate", "version"}},
		{"migrate force", []string{"migrate", "force", "1"}},
		{"seed", []string{"seed"}},
		{"user create", []string{"user", "create", "--username", "ada", "--email", "ada@example.com", "--password", "secret123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")

			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			assert.Contains(t, err.Error(), "DATABASE_URL")
		})
	}
}

func TestServe_RequiresSecretKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x@localhost/folio")
	t.Setenv("SECRET_KEY", "")

	_, _, err := execute(t, "serve")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.Contains(t, err.Error(), "security.secret_key")
}

func TestUserCreate_RequiresFlags(t *testing.T) {
	_, _, err := execute(t, "user", "create", "--username", "ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}
