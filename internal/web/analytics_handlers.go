package web

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/kinglemuel/klp/internal/analytics"
	"github.com/kinglemuel/klp/internal/inquiry"
)

const (
	defaultPeriodDays   = 30
	dashboardViewDays   = 30
	dashboardInquiryCap = 5
)

// apiTrackView records a page view of a visible listing. Recording
// failures are logged; the visitor always gets 204.
func (s *Server) apiTrackView(w http.ResponseWriter, r *http.Request, id string) {
	l, _ := s.chain.Listing(r.Context(), id)
	if l == nil {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	if err := s.views.Record(l.ID, clientIP(r), r.UserAgent()); err != nil {
		slog.Error("tracking view", "id", l.ID, "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// clientIP returns the first X-Forwarded-For hop, or the peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// periodDays reads the "period" query parameter, defaulting to 30 days.
func periodDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("period")
	if v == "" {
		return defaultPeriodDays, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		apiError(w, "period must be a positive number of days", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func (s *Server) apiListingViews(w http.ResponseWriter, r *http.Request, id string) {
	days, ok := periodDays(w, r)
	if !ok {
		return
	}
	stats, err := s.views.ForListing(id, days)
	if err != nil {
		slog.Error("listing views", "id", id, "err", err)
		apiError(w, "failed to load views", http.StatusInternalServerError)
		return
	}
	apiJSON(w, stats, http.StatusOK)
}

// handleAPIAnalytics routes /api/analytics requests. Every route needs an
// admin.
func (s *Server) handleAPIAnalytics(w http.ResponseWriter, r *http.Request) {
	var h http.HandlerFunc
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/api/analytics":
		h = s.apiAnalytics
	case "/api/analytics/dashboard":
		h = s.apiDashboard
	default:
		apiError(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.admin(h).ServeHTTP(w, r)
}

// apiAnalytics summarizes the visible listings plus the views and
// inquiries of the requested period.
func (s *Server) apiAnalytics(w http.ResponseWriter, r *http.Request) {
	days, ok := periodDays(w, r)
	if !ok {
		return
	}

	views, err := s.views.Counts(days)
	if err != nil {
		slog.Error("counting views", "err", err)
		apiError(w, "failed to fetch view statistics", http.StatusInternalServerError)
		return
	}
	stats, err := s.inquiries.Stats(days)
	if err != nil {
		slog.Error("counting inquiries", "err", err)
		apiError(w, "failed to fetch inquiry statistics", http.StatusInternalServerError)
		return
	}

	list, _ := s.chain.Listings(r.Context())
	apiJSON(w, analytics.Summarize(days, list, views, stats), http.StatusOK)
}

func (s *Server) apiDashboard(w http.ResponseWriter, r *http.Request) {
	pending, err := s.inquiries.CountByStatus(inquiry.StatusPending)
	if err != nil {
		slog.Error("counting pending inquiries", "err", err)
		apiError(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	recent, err := s.inquiries.List(inquiry.ListOptions{Limit: dashboardInquiryCap})
	if err != nil {
		slog.Error("listing recent inquiries", "err", err)
		apiError(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	views, err := s.views.Counts(dashboardViewDays)
	if err != nil {
		slog.Error("counting views", "err", err)
		apiError(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	d := analytics.Dashboard{
		PendingInquiries: pending,
		RecentInquiries:  recent,
	}
	list, _ := s.chain.Listings(r.Context())
	d.TotalProperties = len(list)
	for _, n := range views {
		d.TotalViews += n
	}
	apiJSON(w, d, http.StatusOK)
}
