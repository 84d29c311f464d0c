package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey struct{}

// AdminEmail returns the admin email stored on the request context by
// RequireAdmin, or "" when the request was not authenticated.
func AdminEmail(ctx context.Context) string {
	email, _ := ctx.Value(contextKey{}).(string)
	return email
}

// Authenticate returns the admin email behind r, accepting either a
// session cookie or an "Authorization: Bearer" API key. ok is false when
// neither is valid.
func Authenticate(sessions *SessionStore, keys *APIKeyStore, r *http.Request) (email string, ok bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		email, valid, err := keys.Validate(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			slog.Error("validating api key", "err", err)
			return "", false
		}
		return email, valid
	}

	email, err := sessions.Validate(r)
	if err != nil {
		return "", false
	}
	return email, true
}

// RequireAdmin rejects requests without an admin session or API key with
// a 401 JSON error.
func RequireAdmin(sessions *SessionStore, keys *APIKeyStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := Authenticate(sessions, keys, r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if err := json.NewEncoder(w).Encode(map[string]string{"error": "admin login required"}); err != nil {
				slog.Error("encoding error response", "err", err)
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, email)))
	})
}
