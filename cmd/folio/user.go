// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/folioweb/folio/internal/auth"
	authpg "github.com/folioweb/folio/internal/auth/postgres"
	"github.com/folioweb/folio/internal/store"
)

// NewUserCmd creates the user subcommand.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage site accounts",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE:  runUserCreate,
	}
	create.Flags().String("username", "", "account username")
	create.Flags().String("email", "", "account email address")
	create.Flags().String("password", "", "account password")
	create.Flags().Bool("admin", false, "mark the account as an administrator")
	create.Flags().Duration("timeout", defaultCommandTimeout, "timeout for the whole operation")
	for _, name := range []string{"username", "email", "password"} {
		_ = create.MarkFlagRequired(name)
	}
	cmd.AddCommand(create)

	return cmd
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	username, _ := flags.GetString("username")
	email, _ := flags.GetString("email")
	password, _ := flags.GetString("password")
	admin, _ := flags.GetBool("admin")
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}

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

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	pool, err := store.Open(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	creds, err := auth.NewCredentialStoreWithLogger(authpg.NewUserRepository(pool), auth.NewArgon2idHasher(), logger)
	if err != nil {
		return err
	}
	user, err := creds.Create(ctx, username, email, password, admin)
	if err != nil {
		return err
	}

	cmd.Printf("Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}
