package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kinglemuel/klp/internal/listing"
	"github.com/kinglemuel/klp/internal/notify"
	"github.com/kinglemuel/klp/internal/remote"
)

// handleAPIProperties routes /api/properties requests.
func (s *Server) handleAPIProperties(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/properties"), "/")

	// /api/properties: list, add or clear uploads
	if id == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListProperties(w, r)
		case http.MethodPost:
			s.admin(s.apiAddProperty).ServeHTTP(w, r)
		case http.MethodDelete:
			s.admin(s.apiClearUploads).ServeHTTP(w, r)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id, sub, _ := strings.Cut(id, "/")
	switch {
	// /api/properties/{id}: show or remove
	case sub == "" && r.Method == http.MethodGet:
		s.apiGetProperty(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		s.admin(func(w http.ResponseWriter, r *http.Request) {
			s.apiDeleteProperty(w, id)
		}).ServeHTTP(w, r)

	// /api/properties/{id}/view and /views: record or report page views
	case sub == "view" && r.Method == http.MethodPost:
		s.apiTrackView(w, r, id)
	case sub == "views" && r.Method == http.MethodGet:
		s.admin(func(w http.ResponseWriter, r *http.Request) {
			s.apiListingViews(w, r, id)
		}).ServeHTTP(w, r)
	case sub != "" && sub != "view" && sub != "views":
		apiError(w, "not found", http.StatusNotFound)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// parseFilter reads listing filters from the query string.
func parseFilter(q url.Values) (listing.Filter, error) {
	f := listing.Filter{
		Location: strings.TrimSpace(q.Get("location")),
		Query:    q.Get("q"),
	}
	if v := q.Get("type"); v != "" {
		if !listing.ValidCategory(v) {
			return f, fmt.Errorf("type must be land or house")
		}
		f.Category = listing.Category(v)
	}
	if v := q.Get("purpose"); v != "" {
		if !listing.ValidIntent(v) {
			return f, fmt.Errorf("purpose must be buy or rent")
		}
		f.Intent = listing.Intent(v)
	}
	for _, p := range []struct {
		key string
		dst *float64
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 {
			return f, fmt.Errorf("%s must be a non-negative number", p.key)
		}
		*p.dst = n
	}
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("featured must be true or false")
		}
		f.Featured = b
	}
	return f, nil
}

// apiListProperties returns the visible listings as JSON. The source that
// answered is reported in the X-Listing-Source header.
func (s *Server) apiListProperties(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, source := s.chain.Listings(r.Context())
	s.metrics.CatalogRead(source)
	if source != "" {
		w.Header().Set("X-Listing-Source", source)
	}

	apiJSON(w, f.Apply(list), http.StatusOK)
}

// apiGetProperty returns a single listing.
func (s *Server) apiGetProperty(w http.ResponseWriter, r *http.Request, id string) {
	l, source := s.chain.Listing(r.Context(), id)
	if l == nil {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	w.Header().Set("X-Listing-Source", source)
	apiJSON(w, l, http.StatusOK)
}

// apiAddProperty stores a new uploaded listing.
func (s *Server) apiAddProperty(w http.ResponseWriter, r *http.Request) {
	var d listing.Draft
	if !decodeJSON(w, r, &d) {
		return
	}
	if err := d.Validate(); err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := s.store.Add(d)
	if err != nil {
		slog.Error("adding listing", "err", err)
		apiError(w, "failed to save property", http.StatusInternalServerError)
		return
	}

	s.changed(notify.OpAdded, l.ID)
	apiJSON(w, l, http.StatusCreated)
}

// apiDeleteProperty removes an uploaded listing.
func (s *Server) apiDeleteProperty(w http.ResponseWriter, id string) {
	deleted, err := s.store.Delete(id)
	switch {
	case errors.Is(err, listing.ErrImmutable):
		apiError(w, listing.ErrImmutable.Error(), http.StatusForbidden)
		return
	case err != nil:
		slog.Error("deleting listing", "id", id, "err", err)
		apiError(w, "failed to delete property", http.StatusInternalServerError)
		return
	case !deleted:
		apiError(w, "property not found", http.StatusNotFound)
		return
	}

	s.changed(notify.OpDeleted, id)
	apiJSON(w, map[string]string{"status": "deleted", "id": id}, http.StatusOK)
}

// apiClearUploads removes every uploaded listing.
func (s *Server) apiClearUploads(w http.ResponseWriter, r *http.Request) {
	cleared, err := s.store.DeleteAllUploads()
	if err != nil {
		slog.Error("clearing uploads", "err", err)
		apiError(w, "failed to clear uploaded properties", http.StatusInternalServerError)
		return
	}
	if cleared {
		s.changed(notify.OpUploadsCleared, "")
	}
	apiJSON(w, map[string]bool{"cleared": cleared}, http.StatusOK)
}

// handleAPIAdmin routes /api/admin/* requests. Every route needs an admin.
func (s *Server) handleAPIAdmin(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/admin/")

	var h http.HandlerFunc
	switch action {
	case "remove-all":
		h = s.apiRemoveAll
	case "restore":
		h = s.apiRestore
	case "status":
		h = s.apiAdminStatus
	default:
		apiError(w, "not found", http.StatusNotFound)
		return
	}

	want := http.MethodPost
	if action == "status" {
		want = http.MethodGet
	}
	if r.Method != want {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.admin(h).ServeHTTP(w, r)
}

func (s *Server) apiRemoveAll(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveAll(); err != nil {
		slog.Error("removing all listings", "err", err)
		apiError(w, "failed to remove properties", http.StatusInternalServerError)
		return
	}
	s.changed(notify.OpRemovedAll, "")
	s.apiAdminStatus(w, r)
}

func (s *Server) apiRestore(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RestoreSeed(); err != nil {
		slog.Error("restoring seed listings", "err", err)
		apiError(w, "failed to restore default properties", http.StatusInternalServerError)
		return
	}
	s.changed(notify.OpRestored, "")
	s.apiAdminStatus(w, r)
}

// AdminStatus is the body of GET /api/admin/status.
type AdminStatus struct {
	SeedHidden    bool `json:"seed_hidden"`
	SeedCount     int  `json:"seed_count"`
	UploadedCount int  `json:"uploaded_count"`
}

func (s *Server) apiAdminStatus(w http.ResponseWriter, r *http.Request) {
	seed, uploaded := s.store.Counts()
	apiJSON(w, AdminStatus{
		SeedHidden:    s.store.SeedHidden(),
		SeedCount:     seed,
		UploadedCount: uploaded,
	}, http.StatusOK)
}

// handleAPIRemote routes /api/remote/properties requests. Every route
// needs an admin.
func (s *Server) handleAPIRemote(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/remote/properties"), "/")
	id, sub, _ := strings.Cut(rest, "/")

	var h http.HandlerFunc
	switch {
	case id == "" && r.Method == http.MethodGet:
		h = s.apiRemoteList
	case id == "" && r.Method == http.MethodPost:
		h = s.apiRemoteCreate
	case id != "" && sub == "" && r.Method == http.MethodPatch:
		h = func(w http.ResponseWriter, r *http.Request) { s.apiRemoteUpdate(w, r, id) }
	case id != "" && sub == "" && r.Method == http.MethodDelete:
		h = func(w http.ResponseWriter, r *http.Request) { s.apiRemoteDelete(w, r, id) }
	case id != "" && sub == "restore" && r.Method == http.MethodPost:
		h = func(w http.ResponseWriter, r *http.Request) { s.apiRemoteRestore(w, r, id) }
	case sub != "" && sub != "restore":
		apiError(w, "not found", http.StatusNotFound)
		return
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.admin(h).ServeHTTP(w, r)
}

// remoteReady writes 503 when no remote service is configured.
func (s *Server) remoteReady(w http.ResponseWriter) bool {
	if s.remote == nil {
		apiError(w, "remote listing service not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (s *Server) apiRemoteList(w http.ResponseWriter, r *http.Request) {
	if !s.remoteReady(w) {
		return
	}
	includeInactive := false
	if v := r.URL.Query().Get("include_inactive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			apiError(w, "include_inactive must be true or false", http.StatusBadRequest)
			return
		}
		includeInactive = b
	}

	entries, err := s.remote.ListAll(r.Context(), includeInactive)
	if err != nil {
		slog.Error("listing remote listings", "err", err)
		apiError(w, "failed to list properties", http.StatusBadGateway)
		return
	}
	apiJSON(w, entries, http.StatusOK)
}

func (s *Server) apiRemoteCreate(w http.ResponseWriter, r *http.Request) {
	if !s.remoteReady(w) {
		return
	}
	var d listing.Draft
	if !decodeJSON(w, r, &d) {
		return
	}
	if err := d.Validate(); err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := s.remote.Create(r.Context(), d)
	if err != nil {
		slog.Error("creating remote listing", "err", err)
		apiError(w, "failed to create property", http.StatusBadGateway)
		return
	}

	s.changed(notify.OpRemoteCreated, l.ID)
	apiJSON(w, l, http.StatusCreated)
}

func (s *Server) apiRemoteDelete(w http.ResponseWriter, r *http.Request, id string) {
	if !s.remoteReady(w) {
		return
	}
	err := s.remote.SoftDelete(r.Context(), id)
	switch {
	case errors.Is(err, remote.ErrNotFound):
		apiError(w, "property not found", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("deleting remote listing", "id", id, "err", err)
		apiError(w, "failed to delete property", http.StatusBadGateway)
		return
	}

	s.changed(notify.OpRemoteDeleted, id)
	apiJSON(w, map[string]string{"status": "deleted", "id": id}, http.StatusOK)
}

func (s *Server) apiRemoteUpdate(w http.ResponseWriter, r *http.Request, id string) {
	if !s.remoteReady(w) {
		return
	}
	var p listing.Patch
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := p.Validate(); err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := s.remote.Update(r.Context(), id, p)
	switch {
	case errors.Is(err, remote.ErrNotFound):
		apiError(w, "property not found", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("updating remote listing", "id", id, "err", err)
		apiError(w, "failed to update property", http.StatusBadGateway)
		return
	}

	s.changed(notify.OpRemoteUpdated, id)
	apiJSON(w, l, http.StatusOK)
}

func (s *Server) apiRemoteRestore(w http.ResponseWriter, r *http.Request, id string) {
	if !s.remoteReady(w) {
		return
	}
	err := s.remote.Restore(r.Context(), id)
	switch {
	case errors.Is(err, remote.ErrNotFound):
		apiError(w, "no deleted property with that id", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("restoring remote listing", "id", id, "err", err)
		apiError(w, "failed to restore property", http.StatusBadGateway)
		return
	}

	s.changed(notify.OpRemoteRestored, id)
	apiJSON(w, map[string]string{"status": "restored", "id": id}, http.StatusOK)
}
