package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/innovatorsofhonour/innovators/internal/app/runtime"
	"github.com/innovatorsofhonour/innovators/internal/app/seed"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/postgres"
	"github.com/innovatorsofhonour/innovators/internal/config"
	"github.com/innovatorsofhonour/innovators/internal/middleware"
	"github.com/innovatorsofhonour/innovators/internal/platform/migrations"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

const userIDFlag = "user-id"

var tokenFlags = map[string]cobraflags.Flag{
	userIDFlag: &cobraflags.StringFlag{
		Name:  userIDFlag,
		Value: "1",
		Usage: "Id of the user the session token is issued for",
	},
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.LoggingConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	return cfg, log, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := runtime.NewApplication(ctx, cfg, log)
			if err != nil {
				return err
			}
			runErr := application.Run(ctx)

			log.Info("shutting down")
			if err := application.Shutdown(context.Background()); err != nil {
				log.WithError(err).Warn("shutdown incomplete")
			}
			return runErr
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.UsesMemoryStore() {
				return fmt.Errorf("DATABASE_URL is required to migrate")
			}

			db, err := runtime.OpenDatabase(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Apply(cmd.Context(), db.DB); err != nil {
				return err
			}
			log.Info("database migrations applied")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog into an empty database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.UsesMemoryStore() {
				return fmt.Errorf("DATABASE_URL is required to seed")
			}

			db, err := runtime.OpenDatabase(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			wrote, err := seed.New(postgres.New(db), log).WithAdminPassword(cfg.AdminPassword).Run(cmd.Context())
			if err != nil {
				return err
			}
			if !wrote {
				fmt.Fprintln(cmd.OutOrStdout(), "database already populated")
			}
			return nil
		},
	}
}

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(tokenFlags[userIDFlag].GetString(), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid --%s", userIDFlag)
			}
			if cfg.Session.Secret == "" {
				return fmt.Errorf("SESSION_SECRET is required to issue tokens")
			}

			cfg.Database.MigrateOnStart = false
			application, err := runtime.NewApplication(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer application.Shutdown(context.Background())

			u, err := application.App().Users.GetUser(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("lookup user %d: %w", id, err)
			}
			token, err := middleware.IssueToken(cfg.Session.Secret, u, cfg.Session.TTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, tokenFlags)
	return cmd
}
