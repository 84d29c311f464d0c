package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KLP_PORT", "KLP_DB_PATH", "KLP_SEED_FILE", "KLP_DEV_MODE", "KLP_SECURE_COOKIES", "KLP_EPHEMERAL",
		"KLP_ADMIN_EMAIL", "KLP_ADMIN_PASSWORD", "KLP_SMTP_HOST", "KLP_SMTP_PORT",
		"KLP_SMTP_USER", "KLP_SMTP_PASS", "KLP_SMTP_FROM", "KLP_OFFICE_EMAIL",
		"KLP_SUPABASE_URL", "KLP_SUPABASE_KEY", "KLP_STORAGE_BUCKET",
		"KLP_NATS_URL", "KLP_NATS_SUBJECT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.SMTP.Port != "587" {
		t.Errorf("SMTP.Port = %q", cfg.SMTP.Port)
	}
	if !cfg.SecureCookies {
		t.Error("secure cookies should default on outside dev mode")
	}
	if cfg.Bucket != "property-files" {
		t.Errorf("Bucket = %q", cfg.Bucket)
	}
	if cfg.NATSSubject != "klp.listings.changed" {
		t.Errorf("NATSSubject = %q", cfg.NATSSubject)
	}
	if cfg.RemoteConfigured() {
		t.Error("remote should not be configured")
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "KLP_PORT=9090\nKLP_DEV_MODE=true\nKLP_ADMIN_EMAIL= admin@klp.test \nKLP_SEED_FILE=/srv/klp/seed.json\n" +
		"KLP_SUPABASE_URL=https://x.supabase.co/\nKLP_SUPABASE_KEY=anon\nKLP_SMTP_USER=mailer@klp.test\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set, even when empty,
	// so unset the ones the file provides.
	for _, k := range []string{"KLP_PORT", "KLP_DEV_MODE", "KLP_ADMIN_EMAIL", "KLP_SEED_FILE", "KLP_SUPABASE_URL", "KLP_SUPABASE_KEY", "KLP_SMTP_USER"} {
		if err := os.Unsetenv(k); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if !cfg.DevMode || cfg.SecureCookies {
		t.Errorf("DevMode = %v, SecureCookies = %v", cfg.DevMode, cfg.SecureCookies)
	}
	if cfg.AdminEmail != "admin@klp.test" {
		t.Errorf("AdminEmail = %q", cfg.AdminEmail)
	}
	if cfg.SeedFile != "/srv/klp/seed.json" {
		t.Errorf("SeedFile = %q", cfg.SeedFile)
	}
	if cfg.SupabaseURL != "https://x.supabase.co" || !cfg.RemoteConfigured() {
		t.Errorf("SupabaseURL = %q", cfg.SupabaseURL)
	}
	if cfg.SMTP.From != "mailer@klp.test" {
		t.Errorf("SMTP.From = %q, want fallback to user", cfg.SMTP.From)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"KLP_PORT", "eighty"},
		{"KLP_DEV_MODE", "maybe"},
		{"KLP_EPHEMERAL", "2x"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}
