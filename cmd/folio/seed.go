// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/folioweb/folio/internal/portfolio"
	portfoliopg "github.com/folioweb/folio/internal/portfolio/postgres"
	"github.com/folioweb/folio/internal/store"
)

const defaultCommandTimeout = 2 * time.Minute

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load default portfolio content",
		Long: `Apply pending migrations, then insert the default portfolio content
unless it already exists. Without --file the built-in content is used.`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}
	cmd.Flags().String("file", "", "content bundle (YAML) to load instead of the built-in one")
	cmd.Flags().Duration("timeout", defaultCommandTimeout, "timeout for the whole operation")
	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
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
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}

	bundle, err := portfolio.LoadBundle(cfg.Content.File)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Open(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrateUp(cfg.Database.URL, logger); err != nil {
		return err
	}

	inserted, err := portfolio.Seed(ctx, portfoliopg.NewRepository(pool), bundle, logger)
	if err != nil {
		return err
	}
	if !inserted {
		cmd.Println("Default content already present, nothing to do")
		return nil
	}
	cmd.Printf("Seeded %d content rows\n", bundle.Rows())
	return nil
}

// NewValidateContentCmd creates the validate-content subcommand.
func NewValidateContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-content",
		Short: "Check a content bundle without touching the database",
		Args:  cobra.NoArgs,
		RunE:  runValidateContent,
	}
	cmd.Flags().String("file", "", "content bundle (YAML) to check; defaults to the built-in one")
	return cmd
}

func runValidateContent(cmd *cobra.Command, _ []string) error {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}

	bundle, err := portfolio.LoadBundle(file)
	if err != nil {
		if msg := portfolio.FormatSchemaError(err); msg != "" {
			cmd.PrintErrln(msg)
		}
		return oops.With("file", file).Wrap(err)
	}

	source := file
	if source == "" {
		source = "built-in content"
	}
	cmd.Printf("%s: version %s, %d rows OK\n", source, bundle.Version, bundle.Rows())
	return nil
}
