// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kinglemuel/klp/internal/email"
	"github.com/kinglemuel/klp/internal/notify"
	"github.com/kinglemuel/klp/internal/upload"
)

// Config holds everything `klp serve` needs.
type Config struct {
	Port          int
	DBPath        string
	SeedFile      string
	DevMode       bool
	SecureCookies bool
	Ephemeral     bool

	AdminEmail    string
	AdminPassword string

	SMTP        email.SMTPConfig
	OfficeEmail string

	SupabaseURL string
	SupabaseKey string
	Bucket      string

	NATSURL     string
	NATSSubject string
}

// RemoteConfigured reports whether the remote listing service is set up.
func (c Config) RemoteConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// Load reads envFile (if it exists) into the environment and builds a
// Config from KLP_* variables. Variables already set take precedence over
// the file. An empty envFile means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	port, err := envInt("KLP_PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	devMode, err := envBool("KLP_DEV_MODE", false)
	if err != nil {
		return Config{}, err
	}
	secure, err := envBool("KLP_SECURE_COOKIES", !devMode)
	if err != nil {
		return Config{}, err
	}
	ephemeral, err := envBool("KLP_EPHEMERAL", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:          port,
		DBPath:        os.Getenv("KLP_DB_PATH"),
		SeedFile:      os.Getenv("KLP_SEED_FILE"),
		DevMode:       devMode,
		SecureCookies: secure,
		Ephemeral:     ephemeral,
		AdminEmail:    strings.TrimSpace(os.Getenv("KLP_ADMIN_EMAIL")),
		AdminPassword: os.Getenv("KLP_ADMIN_PASSWORD"),
		SMTP: email.SMTPConfig{
			Host: os.Getenv("KLP_SMTP_HOST"),
			Port: envOrDefault("KLP_SMTP_PORT", "587"),
			User: os.Getenv("KLP_SMTP_USER"),
			Pass: os.Getenv("KLP_SMTP_PASS"),
			From: os.Getenv("KLP_SMTP_FROM"),
		},
		OfficeEmail: os.Getenv("KLP_OFFICE_EMAIL"),
		SupabaseURL: strings.TrimRight(os.Getenv("KLP_SUPABASE_URL"), "/"),
		SupabaseKey: os.Getenv("KLP_SUPABASE_KEY"),
		Bucket:      envOrDefault("KLP_STORAGE_BUCKET", upload.DefaultBucket),
		NATSURL:     os.Getenv("KLP_NATS_URL"),
		NATSSubject: envOrDefault("KLP_NATS_SUBJECT", notify.DefaultSubject),
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}
