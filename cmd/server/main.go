package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/birthday-admin/pkg/adapters/handler"
	"github.com/wadjakorntonsri/birthday-admin/pkg/adapters/repository/sqldb"
	"github.com/wadjakorntonsri/birthday-admin/pkg/cache"
	"github.com/wadjakorntonsri/birthday-admin/pkg/config"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/services"
	"github.com/wadjakorntonsri/birthday-admin/pkg/logging"
	"github.com/wadjakorntonsri/birthday-admin/pkg/metrics"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// run wires dependencies and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Initialize Repository
	repo, err := sqldb.NewRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	// Initialize Services
	m := metrics.New()
	c := cache.New(cache.WithObserver(m))
	birthdays := services.NewBirthdayService(repo, c, cfg.CacheTTL, logger,
		services.WithStoreErrorHook(m.StoreError))
	auth := services.NewAuthService(repo, logger)

	// Initialize Router
	mux, err := handler.NewRouter(cfg, handler.Deps{
		Birthdays: birthdays,
		Auth:      auth,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverError := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-serverError:
		return fmt.Errorf("listen: %w", err)
	}
}
