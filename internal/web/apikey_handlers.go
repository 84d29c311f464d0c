package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kinglemuel/klp/internal/auth"
)

const apiTimeFormat = "2006-01-02T15:04:05Z"

type apiKeyResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	KeyPrefix  string  `json:"key_prefix"`
	CreatedAt  string  `json:"created_at,omitempty"`
	LastUsedAt *string `json:"last_used_at,omitempty"`
}

type apiKeyCreateResponse struct {
	Key            string         `json:"key"` // raw key, shown once
	APIKeyResponse apiKeyResponse `json:"api_key"`
}

func toAPIKeyResponse(k auth.APIKey) apiKeyResponse {
	resp := apiKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		Email:     k.Email,
		KeyPrefix: k.KeyPrefix,
	}
	if !k.CreatedAt.IsZero() {
		resp.CreatedAt = k.CreatedAt.UTC().Format(apiTimeFormat)
	}
	if k.LastUsedAt != nil {
		s := k.LastUsedAt.UTC().Format(apiTimeFormat)
		resp.LastUsedAt = &s
	}
	return resp
}

// handleAPIKeys routes /api/keys and /api/keys/{id}. Every route needs an
// admin.
func (s *Server) handleAPIKeys(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/keys"), "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		s.admin(s.apiListKeys).ServeHTTP(w, r)
	case path == "" && r.Method == http.MethodPost:
		s.admin(s.apiCreateKey).ServeHTTP(w, r)
	case path != "" && r.Method == http.MethodDelete:
		s.admin(func(w http.ResponseWriter, r *http.Request) {
			s.apiDeleteKey(w, path)
		}).ServeHTTP(w, r)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiCreateKey issues a new API key to the signed-in admin.
func (s *Server) apiCreateKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = "API Key"
	}

	rawKey, key, err := s.apiKeys.Create(name, auth.AdminEmail(r.Context()))
	if err != nil {
		slog.Error("creating api key", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	apiJSON(w, apiKeyCreateResponse{Key: rawKey, APIKeyResponse: toAPIKeyResponse(*key)}, http.StatusCreated)
}

// apiListKeys returns all API keys without the raw keys.
func (s *Server) apiListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.apiKeys.List()
	if err != nil {
		slog.Error("listing api keys", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]apiKeyResponse, len(keys))
	for i, k := range keys {
		resp[i] = toAPIKeyResponse(k)
	}
	apiJSON(w, resp, http.StatusOK)
}

// apiDeleteKey revokes an API key.
func (s *Server) apiDeleteKey(w http.ResponseWriter, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		apiError(w, "invalid key ID", http.StatusBadRequest)
		return
	}

	err = s.apiKeys.Delete(id)
	switch {
	case errors.Is(err, auth.ErrKeyNotFound):
		apiError(w, "key not found", http.StatusNotFound)
	case err != nil:
		slog.Error("deleting api key", "id", id, "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
