package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/birthday-admin/pkg/adapters/handler"
	"github.com/wadjakorntonsri/birthday-admin/pkg/adapters/repository/sqldb"
	"github.com/wadjakorntonsri/birthday-admin/pkg/cache"
	"github.com/wadjakorntonsri/birthday-admin/pkg/config"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/services"
	"github.com/wadjakorntonsri/birthday-admin/pkg/logging"
	"github.com/wadjakorntonsri/birthday-admin/pkg/metrics"
)

var mux http.Handler

func init() {
	cfg := config.Load()

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	// Note: On Vercel, a local sqlite file is ephemeral; use a Turso or Postgres DATABASE_URL.
	// The handle lives as long as the function instance.
	repo, err := sqldb.NewRepository(context.Background(), cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	m := metrics.New()
	birthdays := services.NewBirthdayService(repo, cache.New(cache.WithObserver(m)), cfg.CacheTTL, logger,
		services.WithStoreErrorHook(m.StoreError))
	auth := services.NewAuthService(repo, logger)

	mux, err = handler.NewRouter(cfg, handler.Deps{
		Birthdays: birthdays,
		Auth:      auth,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		panic(err)
	}
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
