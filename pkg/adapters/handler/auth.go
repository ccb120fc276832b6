package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/wadjakorntonsri/birthday-admin/pkg/config"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"github.com/wadjakorntonsri/birthday-admin/pkg/ports"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookie = "oauthstate"
	googleUserInfo   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type AuthHandler struct {
	auth          ports.AuthService
	sessions      *SessionManager
	errs          errorWriter
	tr            *Translator
	logger        *zap.Logger
	oauthConfig   *oauth2.Config
	frontendURL   string
	allowedEmails []string
	isProduction  bool
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// loginRequest payload
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthHandler(cfg *config.Config, auth ports.AuthService, sessions *SessionManager, tr *Translator, logger *zap.Logger) *AuthHandler {
	logger = logger.With(zap.String("component", "auth"))
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		errs:     errorWriter{tr: tr, logger: logger},
		tr:       tr,
		logger:   logger,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		frontendURL:   strings.TrimSuffix(cfg.FrontendURL, "/"),
		allowedEmails: cfg.AllowedEmails,
		isProduction:  cfg.IsProduction(),
	}
}

// PasswordLogin checks admin credentials and starts a session.
func (h *AuthHandler) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errs.badRequest(w, r)
			return
		}
	} else {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	user, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrUnauthorized) {
		h.logger.Info("login rejected", zap.String("username", req.Username))
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Message: h.tr.Message(h.tr.Localizer(r), MsgInvalidCredentials),
		})
		return
	}
	if err != nil {
		h.errs.write(w, r, err, MsgInternal)
		return
	}

	if err := h.sessions.Issue(w, user.Username); err != nil {
		h.errs.write(w, r, err, MsgInternal)
		return
	}

	h.logger.Info("login successful", zap.String("username", user.Username))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := h.generateStateOauthCookie(w)
	url := h.oauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	oauthState, err := r.Cookie(oauthStateCookie)
	if err != nil {
		h.logger.Warn("callback: missing oauthstate cookie", zap.Error(err))
		http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
		return
	}

	if r.FormValue("state") != oauthState.Value {
		h.logger.Warn("callback: invalid oauth state")
		http.Error(w, "invalid oauth google state", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		h.logger.Error("callback: code exchange failed", zap.Error(err))
		http.Error(w, "code exchange failed", http.StatusInternalServerError)
		return
	}

	response, err := h.oauthConfig.Client(r.Context(), token).Get(googleUserInfo)
	if err != nil {
		h.logger.Error("callback: failed getting user info", zap.Error(err))
		http.Error(w, "failed getting user info", http.StatusInternalServerError)
		return
	}
	defer response.Body.Close()

	var googleUser GoogleUser
	if err := json.NewDecoder(response.Body).Decode(&googleUser); err != nil {
		h.logger.Error("callback: failed decoding user info", zap.Error(err))
		http.Error(w, "failed decoding user info", http.StatusInternalServerError)
		return
	}

	if !h.emailAllowed(googleUser.Email) {
		h.logger.Warn("callback: email not in allowlist", zap.String("email", googleUser.Email))
		http.Error(w, "Access denied: your email is not in the allowlist", http.StatusForbidden)
		return
	}

	if err := h.sessions.Issue(w, googleUser.Email); err != nil {
		h.logger.Error("callback: failed signing JWT", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("login successful", zap.String("email", googleUser.Email))
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, h.frontendURL+LoginPath, http.StatusTemporaryRedirect)
}

// emailAllowed applies the allowlist; an empty list admits any Google account.
func (h *AuthHandler) emailAllowed(email string) bool {
	if email == "" {
		return false
	}
	return len(h.allowedEmails) == 0 || slices.Contains(h.allowedEmails, email)
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	cookie := http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
	return state
}
