package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentSecurityPolicy is sent with every response.
const ContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' va.vercel-scripts.com; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data:; " +
	"font-src 'self'; " +
	"connect-src 'self' vitals.vercel-insights.com; " +
	"frame-src 'self';"

// LoginPath is where browsers without a session are sent.
const LoginPath = "/auth"

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the session subject stored by AuthMiddleware.
func UserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(userContextKey).(string)
	return user
}

type Middleware struct {
	sessions *SessionManager
	tr       *Translator
	logger   *zap.Logger
}

func NewMiddleware(sessions *SessionManager, tr *Translator, logger *zap.Logger) *Middleware {
	return &Middleware{
		sessions: sessions,
		tr:       tr,
		logger:   logger,
	}
}

// AuthMiddleware verifies the JWT token from the cookie
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.sessions.Verify(r)
		if err != nil {
			if isAPIRequest(r) {
				writeJSON(w, http.StatusUnauthorized, errorResponse{
					Message: m.tr.Message(m.tr.Localizer(r), MsgUnauthorized),
				})
			} else {
				http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
			}
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SecurityHeaders sets the content security policy and related headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", ContentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request.
func (m *Middleware) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
