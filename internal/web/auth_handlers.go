package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/kinglemuel/klp/internal/auth"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// checkCredentials decodes the request body and verifies it against the
// admin account, writing the error response when it fails.
func (s *Server) checkCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var c credentials
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return c, false
	}
	if !s.authCfg.Configured() {
		apiError(w, "admin login is not configured", http.StatusServiceUnavailable)
		return c, false
	}
	if !decodeJSON(w, r, &c) {
		return c, false
	}
	if !s.authCfg.CheckCredentials(c.Email, c.Password) {
		slog.Warn("failed admin login", "email", c.Email, "ip", r.RemoteAddr)
		apiError(w, "invalid email or password", http.StatusUnauthorized)
		return c, false
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return c, true
}

// handleLogin starts an admin browser session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c, ok := s.checkCredentials(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Create(w, c.Email); err != nil {
		slog.Error("creating session", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}
	apiJSON(w, map[string]any{"admin": true, "email": c.Email}, http.StatusOK)
}

// handleLogout ends the browser session. A bearer key sent with the
// request is revoked as well.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if _, err := s.apiKeys.DeleteByRaw(strings.TrimPrefix(h, "Bearer ")); err != nil {
			slog.Error("revoking api key", "err", err)
		}
	}
	if err := s.sessions.Destroy(w, r); err != nil {
		slog.Error("destroying session", "err", err)
	}
	apiJSON(w, map[string]bool{"admin": false}, http.StatusOK)
}

// handleAuthStatus reports whether the caller is an authenticated admin.
func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.Authenticate(s.sessions, s.apiKeys, r)
	resp := map[string]any{"admin": ok}
	if ok {
		resp["email"] = email
	}
	apiJSON(w, resp, http.StatusOK)
}

// handleToken exchanges admin credentials for a new API key, for the CLI.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	c, ok := s.checkCredentials(w, r)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "CLI"
	}

	raw, key, err := s.apiKeys.Create(name, c.Email)
	if err != nil {
		slog.Error("creating api key", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	apiJSON(w, map[string]any{
		"api_key":    raw,
		"id":         key.ID,
		"name":       key.Name,
		"key_prefix": key.KeyPrefix,
	}, http.StatusCreated)
}
