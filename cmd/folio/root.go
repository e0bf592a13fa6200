// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/folioweb/folio/internal/config"
	"github.com/folioweb/folio/internal/logging"
	"github.com/folioweb/folio/internal/xdg"
)

const serviceName = "folio"

// flagKeys maps command-line flags onto configuration keys. Flags only
// override the configuration when given explicitly.
var flagKeys = map[string]string{
	"database-url": "database.url",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"addr":         "http.addr",
	"base-url":     "http.base_url",
	"metrics-addr": "metrics.addr",
	"upload-dir":   "http.upload_dir",
	"static-dir":   "http.static_dir",
	"file":         "content.file",
}

// NewRootCmd creates the root command for the Folio CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folio",
		Short: "Folio - a personal portfolio site",
		Long: `Folio serves a personal portfolio: public pages with education, experience,
projects, certifications and skills, a contact form, and a private dashboard
behind password login with emailed password reset.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file path (YAML)")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("log-format", "json", "log format (json or text)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewValidateContentCmd())
	cmd.AddCommand(NewUserCmd())

	return cmd
}

// loadConfig reads configuration for cmd from defaults, the config file,
// the environment and the command's flags. Without --config the file is
// $XDG_CONFIG_HOME/folio/config.yaml when present.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}
	if file == "" {
		if file, err = xdg.DefaultConfigFile(); err != nil {
			return nil, err
		}
	}
	return config.Load(config.Options{
		File:     file,
		Flags:    cmd.Flags(),
		FlagKeys: flagKeys,
	})
}

// requireDatabase is the validation used by commands that only talk to the
// database.
func requireDatabase(cfg *config.Config) error {
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required (or set DATABASE_URL)")
	}
	return nil
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if !logging.ValidFormat(cfg.Log.Format) {
		return nil, oops.Code("LOG_FORMAT_INVALID").
			With("format", cfg.Log.Format).
			Errorf("log format must be 'json' or 'text', got %q", cfg.Log.Format)
	}
	return logging.SetDefault(serviceName, version, cfg.Log.Format, level), nil
}
