package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/birthday-admin/pkg/adapters/repository/sqldb"
	"github.com/wadjakorntonsri/birthday-admin/pkg/config"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/services"
	"github.com/wadjakorntonsri/birthday-admin/pkg/logging"
	"go.uber.org/zap"
)

const (
	formatJSON  = "json"
	formatVCard = "vcf"
)

var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "birthday-admin",
	Short: "Maintenance commands for the birthday store",
	Long: `Maintenance commands for the birthday store.

The database is taken from DATABASE_URL (or .env) unless --database is given.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database", "", "Database URL (overrides DATABASE_URL)")
}

// app holds the wired services for one command run.
type app struct {
	logger    *zap.Logger
	repo      *sqldb.Repository
	birthdays *services.BirthdayService
	auth      *services.AuthService
}

func (a *app) Close() {
	_ = a.repo.Close()
	_ = a.logger.Sync()
}

func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	repo, err := sqldb.NewRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &app{
		logger: logger,
		repo:   repo,
		// No cache: every command is a single pass.
		birthdays: services.NewBirthdayService(repo, nil, 0, logger),
		auth:      services.NewAuthService(repo, logger),
	}, nil
}

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatVCard:
		return nil
	}
	return fmt.Errorf("unsupported format %q (want %s or %s)", format, formatJSON, formatVCard)
}
