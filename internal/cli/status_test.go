package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusNoAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KLP_API_KEY", "")
	t.Setenv("KLP_SERVER_URL", "http://127.0.0.1:1")

	if err := runStatus(); err != nil {
		t.Fatalf("status with no key: %v", err)
	}
}

func TestStatusShortAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KLP_API_KEY", "klp_a")
	t.Setenv("KLP_SERVER_URL", "http://127.0.0.1:1")

	// Unreachable server is reported, not returned.
	if err := runStatus(); err != nil {
		t.Fatalf("status with short key: %v", err)
	}
}

func TestStatusWithInvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, err := w.Write([]byte(`{"error":"admin login required"}`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("KLP_API_KEY", "klp_badkey1234567890abcde")
	t.Setenv("KLP_SERVER_URL", srv.URL)

	if err := runStatus(); err != nil {
		t.Fatalf("status: %v", err)
	}
}
