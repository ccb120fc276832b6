package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/birthday-admin/pkg/config"
	"github.com/wadjakorntonsri/birthday-admin/pkg/metrics"
	"github.com/wadjakorntonsri/birthday-admin/pkg/ports"
	"go.uber.org/zap"
)

// Deps are the collaborators the router dispatches to. Metrics is optional.
type Deps struct {
	Birthdays ports.BirthdayService
	Auth      ports.AuthService
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, deps Deps) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tr, err := NewTranslator(cfg.DefaultLanguage)
	if err != nil {
		return nil, err
	}

	// Initialize Handlers
	sessions := NewSessionManager(cfg)
	bh := NewBirthdayHandler(deps.Birthdays, tr, logger)
	ch := NewCalendarHandler(deps.Birthdays, tr, logger)
	authHandler := NewAuthHandler(cfg, deps.Auth, sessions, tr, logger)

	// Initialize Middleware
	mw := NewMiddleware(sessions, tr, logger)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}
	mux.HandleFunc("POST /api/auth", authHandler.PasswordLogin)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)
	if cfg.GoogleLoginEnabled() {
		mux.HandleFunc("GET /auth/google/login", authHandler.Login)
		mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	}

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/birthdays", bh.List)
	protectedMux.HandleFunc("POST /api/v1/birthdays", bh.Create)
	protectedMux.HandleFunc("PUT /api/v1/birthdays/{id}", bh.Update)
	protectedMux.HandleFunc("DELETE /api/v1/birthdays/{id}", bh.Delete)
	protectedMux.HandleFunc("GET /api/v1/calendar.ics", ch.Feed)

	// protectedMux holds full paths, so the /api/v1/ subtree dispatches straight to it.
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	var h http.Handler = mw.RequestLogger(mux)
	h = SecurityHeaders(h)
	if deps.Metrics != nil {
		h = deps.Metrics.Instrument(h)
	}
	return h, nil
}
