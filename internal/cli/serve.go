package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kinglemuel/klp/internal/auth"
	"github.com/kinglemuel/klp/internal/config"
	"github.com/kinglemuel/klp/internal/email"
	"github.com/kinglemuel/klp/internal/kv"
	"github.com/kinglemuel/klp/internal/listing"
	"github.com/kinglemuel/klp/internal/logging"
	"github.com/kinglemuel/klp/internal/metrics"
	"github.com/kinglemuel/klp/internal/notify"
	"github.com/kinglemuel/klp/internal/remote"
	"github.com/kinglemuel/klp/internal/upload"
	"github.com/kinglemuel/klp/internal/web"
)

const (
	sessionCleanupInterval = time.Hour
	shutdownTimeout        = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	var (
		port      int
		envFile   string
		seedFile  string
		ephemeral bool
		dev       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the site API server",
		Long:  "Start the HTTP API server. Settings come from KLP_* environment variables, optionally loaded from a .env file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if seedFile != "" {
				cfg.SeedFile = seedFile
			}
			if ephemeral {
				cfg.Ephemeral = true
			}
			if dev {
				cfg.DevMode = true
				cfg.SecureCookies = false
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (overrides KLP_PORT)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "JSON seed catalog to serve instead of the built-in one (overrides KLP_SEED_FILE)")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "keep uploaded listings in memory only")
	cmd.Flags().BoolVar(&dev, "dev", false, "dev mode: text logs, emails logged instead of sent, insecure cookies")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logging.Setup(cfg.DevMode)

	database, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeDB(database)

	seed, err := loadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}
	var store listing.KV = kv.NewSQLite(database)
	if cfg.Ephemeral {
		store = kv.NewMemory()
	}
	listings := listing.NewStore(store, seed)

	opts := web.Options{
		Auth: auth.Config{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			DevMode:       cfg.DevMode,
		},
		SecureCookies: cfg.SecureCookies,
		Mailer:        email.NewMailer(cfg.SMTP, cfg.OfficeEmail, cfg.DevMode),
		Metrics:       metrics.New(),
	}
	if !opts.Auth.Configured() {
		slog.Warn("admin credentials not set; admin login is disabled", "env", "KLP_ADMIN_EMAIL/KLP_ADMIN_PASSWORD")
	}

	if cfg.RemoteConfigured() {
		rc, err := remote.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return err
		}
		files, err := upload.NewStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket)
		if err != nil {
			return err
		}
		opts.Remote = rc
		opts.Files = files
		slog.Info("remote listing service enabled", "url", cfg.SupabaseURL, "bucket", cfg.Bucket)
	}

	if cfg.NATSURL != "" {
		n, err := notify.ConnectNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := n.Close(); cerr != nil {
				slog.Warn("closing nats", "err", cerr)
			}
		}()
		opts.Notifier = n
	}

	srv, err := web.NewServer(database, listings, opts)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", httpServer.Addr, "dev", cfg.DevMode, "ephemeral", cfg.Ephemeral)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		cleanupSessions(gctx, srv.Sessions(), sessionCleanupInterval)
		return nil
	})

	return g.Wait()
}

// loadSeed reads the seed catalog from path, or the built-in catalog when
// path is empty.
func loadSeed(path string) ([]*listing.Listing, error) {
	if path == "" {
		seed, err := listing.DefaultSeed()
		if err != nil {
			return nil, fmt.Errorf("loading seed listings: %w", err)
		}
		return seed, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("closing seed file", "path", path, "err", cerr)
		}
	}()

	seed, err := listing.LoadSeed(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	slog.Info("seed catalog loaded", "path", path, "count", len(seed))
	return seed, nil
}

// cleanupSessions removes expired sessions every interval until ctx ends.
func cleanupSessions(ctx context.Context, sessions *auth.SessionStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Cleanup()
			if err != nil {
				slog.Warn("cleaning up sessions", "err", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions removed", "count", n)
			}
		}
	}
}
