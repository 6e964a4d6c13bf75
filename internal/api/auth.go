package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/uphproperties/uphsite/internal/auth"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AuthHandler handles admin session endpoints.
type AuthHandler struct {
	Sessions     *auth.Authenticator
	Admin        auth.Credentials
	CookieSecure bool
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Email     string `json:"email"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// Login handles POST /api/admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	ok, err := h.Admin.Validate(req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.Sessions.Issue(h.Admin.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setSessionCookie(w, token, h.CookieSecure)
	slog.Info("admin logged in", "email", h.Admin.Email)
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// Logout handles POST /api/admin/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := GetIdentity(r.Context()); id != nil {
		slog.Info("admin logged out", "email", id.Email)
	}
	clearSessionCookie(w, h.CookieSecure)
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// Session handles GET /api/admin/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())
	if id == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	jsonResponse(w, http.StatusOK, sessionResponse{
		Email:     id.Email,
		ExpiresAt: id.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
