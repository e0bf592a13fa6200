// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package main

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/folioweb/folio/internal/store"
)

// NewMigrateCmd creates the migrate subcommand and its children.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Run all pending database migrations. Subcommands roll back, report or force the schema version.`,
		RunE:  runMigrateUp,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops all data)",
		Args:  cobra.NoArgs,
		RunE:  runMigrateDown,
	}
	down.Flags().Bool("yes", false, "confirm dropping all tables")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE:  runMigrateVersion,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Record VERSION as applied without running it (-1 clears it)",
		Long:  `Record VERSION as applied without running it. Use after fixing a dirty migration by hand.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runMigrateForce,
	})

	return cmd
}

// withMigrator loads configuration, opens a migrator and runs fn.
func withMigrator(cmd *cobra.Command, fn func(m *store.Migrator) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireDatabase(cfg); err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	m, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			logger.Warn("closing migrator", "error", closeErr)
		}
	}()
	return fn(m)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(m *store.Migrator) error {
		pending, err := m.PendingMigrations()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			cmd.Println("No pending migrations")
			return nil
		}
		for _, v := range pending {
			name, err := store.MigrationName(v)
			if err != nil {
				return err
			}
			cmd.Printf("Applying %s\n", name)
		}
		if err := m.Up(); err != nil {
			return err
		}
		cmd.Println("Migrations completed successfully")
		return nil
	})
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}
	if !yes {
		return oops.Code("CONFIRMATION_REQUIRED").Errorf("migrate down drops every table; pass --yes to confirm")
	}
	return withMigrator(cmd, func(m *store.Migrator) error {
		if err := m.Down(); err != nil {
			return err
		}
		cmd.Println("All migrations rolled back")
		return nil
	})
}

func runMigrateVersion(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(m *store.Migrator) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			cmd.Println("No migrations applied")
			return nil
		}
		name, err := store.MigrationName(v)
		if err != nil {
			return err
		}
		if dirty {
			cmd.Printf("%s (dirty)\n", name)
			return nil
		}
		cmd.Println(name)
		return nil
	})
}

func runMigrateForce(cmd *cobra.Command, args []string) error {
	v, err := parseForceVersion(args[0])
	if err != nil {
		return err
	}
	return withMigrator(cmd, func(m *store.Migrator) error {
		if err := m.Force(v); err != nil {
			return err
		}
		cmd.Printf("Forced schema version %d\n", v)
		return nil
	})
}

// parseForceVersion parses a schema version. -1 clears the recorded version.
func parseForceVersion(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Wrap(err)
	}
	if v < -1 {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be -1 or greater, got %d", v)
	}
	return v, nil
}
