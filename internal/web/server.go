// Package web provides the HTTP API for the King Lemuel Properties site.
package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/kinglemuel/klp/internal/analytics"
	"github.com/kinglemuel/klp/internal/auth"
	"github.com/kinglemuel/klp/internal/catalog"
	"github.com/kinglemuel/klp/internal/email"
	"github.com/kinglemuel/klp/internal/inquiry"
	"github.com/kinglemuel/klp/internal/listing"
	"github.com/kinglemuel/klp/internal/logging"
	"github.com/kinglemuel/klp/internal/metrics"
	"github.com/kinglemuel/klp/internal/notify"
	"github.com/kinglemuel/klp/internal/remote"
	"github.com/kinglemuel/klp/internal/upload"
)

// RemoteService is the hosted listing service. Public reads go through the
// catalog chain; everything else is an admin-only pass-through.
type RemoteService interface {
	catalog.RemoteClient
	ListAll(ctx context.Context, includeInactive bool) ([]remote.Entry, error)
	Create(ctx context.Context, d listing.Draft) (*listing.Listing, error)
	Update(ctx context.Context, id string, p listing.Patch) (*listing.Listing, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

// FileStore accepts uploaded media.
type FileStore interface {
	Put(ctx context.Context, objectPath, contentType string, size int64, body io.Reader) (*upload.File, error)
	SignUpload(ctx context.Context, objectPath string) (*upload.SignedUpload, error)
}

// Options carries the optional collaborators of a Server. Nil fields
// disable the features that need them.
type Options struct {
	Auth          auth.Config
	SecureCookies bool
	Remote        RemoteService
	Files         FileStore
	Mailer        *email.Mailer
	Notifier      notify.Notifier
	Metrics       *metrics.Metrics
}

// Server is the site's HTTP API.
type Server struct {
	store     *listing.Store
	chain     *catalog.Chain
	remote    RemoteService
	files     FileStore
	maxUpload int64
	inquiries *inquiry.Repository
	views     *analytics.Repository
	sessions  *auth.SessionStore
	apiKeys   *auth.APIKeyStore
	authCfg   auth.Config
	mailer    *email.Mailer
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	mux       *http.ServeMux
	handler   http.Handler
	now       func() time.Time
}

// NewServer creates a server over db and the listing store.
func NewServer(db *sql.DB, store *listing.Store, opts Options) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("listing store is required")
	}

	sources := []catalog.Source{}
	if opts.Remote != nil {
		sources = append(sources, catalog.Remote{Client: opts.Remote})
	}
	sources = append(sources, catalog.Local{Store: store})

	s := &Server{
		store:     store,
		chain:     catalog.NewChain(sources...),
		remote:    opts.Remote,
		files:     opts.Files,
		maxUpload: upload.MaxVideoSize + 1<<20,
		inquiries: inquiry.NewRepository(db),
		views:     analytics.NewRepository(db),
		sessions:  auth.NewSessionStore(db, opts.SecureCookies),
		apiKeys:   auth.NewAPIKeyStore(db),
		authCfg:   opts.Auth,
		mailer:    opts.Mailer,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		mux:       http.NewServeMux(),
		now:       time.Now,
	}
	if s.mailer == nil {
		s.mailer = email.NewMailer(email.SMTPConfig{}, "", true)
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.metrics.WatchListings(store.Counts)

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", s.metrics.Handler())

	s.mux.HandleFunc("/auth/login", s.handleLogin)
	s.mux.HandleFunc("/auth/logout", s.handleLogout)
	s.mux.HandleFunc("/auth/status", s.handleAuthStatus)
	s.mux.HandleFunc("/auth/token", s.handleToken)
	s.mux.HandleFunc("/api/keys", s.handleAPIKeys)
	s.mux.HandleFunc("/api/keys/", s.handleAPIKeys)

	s.mux.HandleFunc("/api/properties", s.handleAPIProperties)
	s.mux.HandleFunc("/api/properties/", s.handleAPIProperties)
	s.mux.HandleFunc("/api/admin/", s.handleAPIAdmin)
	s.mux.HandleFunc("/api/remote/properties", s.handleAPIRemote)
	s.mux.HandleFunc("/api/remote/properties/", s.handleAPIRemote)
	s.mux.HandleFunc("/api/contact", s.handleContact)
	s.mux.HandleFunc("/api/inquiries", s.handleAPIInquiries)
	s.mux.HandleFunc("/api/inquiries/", s.handleAPIInquiries)
	s.mux.HandleFunc("/api/analytics", s.handleAPIAnalytics)
	s.mux.HandleFunc("/api/analytics/", s.handleAPIAnalytics)
	s.mux.Handle("/api/upload", s.admin(s.handleUpload))
	s.mux.Handle("/api/storage/signed-upload", s.admin(s.handleSignedUpload))

	s.handler = logging.RequestLogger(s.metrics.Middleware(routeLabel, s.mux))

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Sessions returns the session store so callers can expire old sessions.
func (s *Server) Sessions() *auth.SessionStore {
	return s.sessions
}

// admin wraps h so only an authenticated admin reaches it.
func (s *Server) admin(h http.HandlerFunc) http.Handler {
	return auth.RequireAdmin(s.sessions, s.apiKeys, h)
}

// changed reports a successful listing mutation.
func (s *Server) changed(op, id string) {
	s.metrics.Mutation(op)
	s.notifier.ListingsChanged(op, id)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

var staticRoutes = map[string]bool{
	"/health":                    true,
	"/metrics":                   true,
	"/auth/login":                true,
	"/auth/logout":               true,
	"/auth/status":               true,
	"/auth/token":                true,
	"/api/keys":                  true,
	"/api/properties":            true,
	"/api/admin/remove-all":      true,
	"/api/admin/restore":         true,
	"/api/admin/status":          true,
	"/api/remote/properties":     true,
	"/api/contact":               true,
	"/api/inquiries":             true,
	"/api/inquiries/stats":       true,
	"/api/analytics":             true,
	"/api/analytics/dashboard":   true,
	"/api/upload":                true,
	"/api/storage/signed-upload": true,
}

// idRoutes lists the path prefixes followed by an id, with the sub-paths
// allowed after it.
var idRoutes = []struct {
	prefix string
	subs   []string
}{
	{"/api/properties/", []string{"view", "views"}},
	{"/api/remote/properties/", []string{"restore"}},
	{"/api/inquiries/", nil},
	{"/api/keys/", nil},
}

// routeLabel collapses ids out of the path so metric labels stay bounded.
func routeLabel(r *http.Request) string {
	p := r.URL.Path
	if staticRoutes[p] {
		return p
	}
	for _, rt := range idRoutes {
		rest, ok := strings.CutPrefix(p, rt.prefix)
		if !ok {
			continue
		}
		id, sub, hasSub := strings.Cut(rest, "/")
		switch {
		case id == "":
			return "other"
		case !hasSub:
			return rt.prefix + "{id}"
		case slices.Contains(rt.subs, sub):
			return rt.prefix + "{id}/" + sub
		}
		return "other"
	}
	return "other"
}

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
