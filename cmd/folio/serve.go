// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/folioweb/folio/internal/auth"
	authpg "github.com/folioweb/folio/internal/auth/postgres"
	"github.com/folioweb/folio/internal/avatar"
	"github.com/folioweb/folio/internal/config"
	"github.com/folioweb/folio/internal/mail"
	"github.com/folioweb/folio/internal/observability"
	"github.com/folioweb/folio/internal/portfolio"
	portfoliopg "github.com/folioweb/folio/internal/portfolio/postgres"
	"github.com/folioweb/folio/internal/store"
	"github.com/folioweb/folio/internal/web"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the public web server and the observability server. Migrations
and default content seeding run first unless disabled in the configuration.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "HTTP listen address (default from config: 127.0.0.1:8080)")
	cmd.Flags().String("base-url", "", "external base URL used in emailed links")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address")
	cmd.Flags().String("upload-dir", "", "directory for uploaded avatars")
	cmd.Flags().String("static-dir", "", "directory overriding the built-in static assets")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting folio", "version", version, "addr", cfg.HTTP.Addr)

	pool, err := store.Open(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	obs := observability.NewServer(cfg.Metrics.Addr, observability.DatabaseReady(pool), logger)

	app, err := buildApp(cfg, pool, obs.Metrics(), logger)
	if err != nil {
		return err
	}

	if cfg.Content.SeedOnStart {
		bundle, err := portfolio.LoadBundle(cfg.Content.File)
		if err != nil {
			return err
		}
		if _, err := portfolio.Seed(ctx, app.content, bundle, logger); err != nil {
			return err
		}
	}

	if n, err := app.auth.PurgeExpired(ctx); err != nil {
		logger.Warn("purge expired sessions failed", "error", err)
	} else if n > 0 {
		logger.Info("purged expired sessions", "count", n)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Metrics.Addr != "" {
		obsErrCh, err := obs.Start()
		if err != nil {
			return err
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)
	}

	webErrCh, err := app.site.Start(cfg.HTTP.Addr)
	if err != nil {
		stopServers(logger, obs)
		return err
	}
	go monitorServerErrors(ctx, cancel, webErrCh, "web", logger)

	cmd.Printf("Folio listening on %s\n", app.site.Addr())

	<-ctx.Done()
	logger.Info("shutting down")
	stopServers(logger, app.site, obs)
	logger.Info("shutdown complete")
	return nil
}

type stopper interface {
	Stop(ctx context.Context) error
}

func stopServers(logger *slog.Logger, servers ...stopper) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, s := range servers {
		if err := s.Stop(ctx); err != nil {
			logger.Warn("error stopping server", "error", err)
		}
	}
}

// app is the wired application.
type app struct {
	site    *web.Server
	auth    *auth.Service
	content *portfoliopg.Repository
}

func buildApp(cfg *config.Config, pool *pgxpool.Pool, metrics *observability.Metrics, logger *slog.Logger) (*app, error) {
	users := authpg.NewUserRepository(pool)
	sessions := authpg.NewWebSessionRepository(pool)

	creds, err := auth.NewCredentialStoreWithLogger(users, auth.NewArgon2idHasher(), logger)
	if err != nil {
		return nil, err
	}
	authSvc, err := auth.NewAuthService(creds, sessions,
		auth.WithSessionTTL(cfg.Security.SessionTTL),
		auth.WithRememberTTL(cfg.Security.RememberTTL),
		auth.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService([]byte(cfg.Security.SecretKey), auth.WithMaxAge(cfg.Security.ResetTokenMaxAge))
	if err != nil {
		return nil, err
	}
	reset, err := auth.NewPasswordResetService(creds, tokens, mail.New(cfg.Mail, logger), metrics, logger)
	if err != nil {
		return nil, err
	}

	avatars, err := avatar.NewFileStore(cfg.HTTP.UploadDir,
		avatar.WithMaxBytes(cfg.HTTP.MaxUploadBytes),
		avatar.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	profiles, err := auth.NewProfileService(users, avatars, logger)
	if err != nil {
		return nil, err
	}

	content := portfoliopg.NewRepository(pool)
	contact, err := portfolio.NewContactService(content, metrics, logger)
	if err != nil {
		return nil, err
	}

	site, err := web.New(web.Deps{
		Auth:           authSvc,
		Creds:          creds,
		Reset:          reset,
		Profiles:       profiles,
		Content:        content,
		Contact:        contact,
		Events:         metrics,
		Observer:       metrics,
		Logger:         logger,
		BaseURL:        cfg.HTTP.BaseURL,
		StaticDir:      cfg.HTTP.StaticDir,
		UploadDir:      avatars.Dir(),
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		SecureCookies:  cfg.HTTP.SecureCookies,
	})
	if err != nil {
		return nil, err
	}

	return &app{site: site, auth: authSvc, content: content}, nil
}

func migrateUp(databaseURL string, logger *slog.Logger) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("closing migrator", "error", closeErr)
		}
	}()

	pending, err := migrator.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		logger.Debug("schema up to date")
		return nil
	}
	if err := migrator.Up(); err != nil {
		return oops.With("pending", pending).Wrap(err)
	}
	logger.Info("migrations applied", "count", len(pending))
	return nil
}

// monitorServerErrors cancels ctx when a server reports an error. It exits
// when the channel closes or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
