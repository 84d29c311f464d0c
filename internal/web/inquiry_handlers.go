package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kinglemuel/klp/internal/email"
	"github.com/kinglemuel/klp/internal/inquiry"
)

// handleContact forwards the contact form to the office inbox.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var f email.ContactForm
	if !decodeJSON(w, r, &f) {
		return
	}
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.mailer.SendContact(f, s.now()); err != nil {
		slog.Error("sending contact email", "err", err)
		apiError(w, "failed to send email", http.StatusInternalServerError)
		return
	}
	apiJSON(w, map[string]string{"message": "Email sent successfully"}, http.StatusOK)
}

// handleAPIInquiries routes /api/inquiries requests.
func (s *Server) handleAPIInquiries(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/inquiries"), "/")

	switch {
	case id == "" && r.Method == http.MethodPost:
		s.apiCreateInquiry(w, r)
	case id == "" && r.Method == http.MethodGet:
		s.admin(s.apiListInquiries).ServeHTTP(w, r)
	case id == "stats" && r.Method == http.MethodGet:
		s.admin(s.apiInquiryStats).ServeHTTP(w, r)
	case id != "" && r.Method == http.MethodPatch:
		s.admin(func(w http.ResponseWriter, r *http.Request) {
			s.apiUpdateInquiry(w, r, id)
		}).ServeHTTP(w, r)
	case id != "" && r.Method == http.MethodDelete:
		s.admin(func(w http.ResponseWriter, r *http.Request) {
			s.apiDeleteInquiry(w, id)
		}).ServeHTTP(w, r)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiCreateInquiry records a visitor's inquiry about a visible listing and
// notifies the office.
func (s *Server) apiCreateInquiry(w http.ResponseWriter, r *http.Request) {
	var in inquiry.NewInquiry
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ListingID = strings.TrimSpace(in.ListingID)
	if in.ListingID == "" {
		apiError(w, "listing_id is required", http.StatusBadRequest)
		return
	}

	l, _ := s.chain.Listing(r.Context(), in.ListingID)
	if l == nil {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}

	inq, err := s.inquiries.Create(in, l.Title)
	if errors.Is(err, inquiry.ErrInvalid) {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("creating inquiry", "err", err)
		apiError(w, "failed to save inquiry", http.StatusInternalServerError)
		return
	}

	notice := email.InquiryNotice{
		ListingID:    l.ID,
		ListingTitle: l.Title,
		Price:        l.Price,
		Name:         inq.Name,
		Email:        inq.Email,
		Phone:        inq.Phone,
		Message:      inq.Message,
	}
	if err := s.mailer.SendInquiry(notice, inq.CreatedAt); err != nil {
		slog.Error("sending inquiry email", "inquiry_id", inq.ID, "err", err)
	}

	apiJSON(w, inq, http.StatusCreated)
}

func (s *Server) apiListInquiries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := inquiry.ListOptions{
		ListingID: q.Get("listing_id"),
	}
	if v := q.Get("status"); v != "" {
		if !inquiry.ValidStatus(v) {
			apiError(w, "status must be pending, contacted, or closed", http.StatusBadRequest)
			return
		}
		opts.Status = inquiry.Status(v)
	}
	for _, p := range []struct {
		key string
		dst *int
	}{{"limit", &opts.Limit}, {"offset", &opts.Offset}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			apiError(w, p.key+" must be a non-negative integer", http.StatusBadRequest)
			return
		}
		*p.dst = n
	}

	list, err := s.inquiries.List(opts)
	if err != nil {
		slog.Error("listing inquiries", "err", err)
		apiError(w, "failed to list inquiries", http.StatusInternalServerError)
		return
	}
	apiJSON(w, list, http.StatusOK)
}

func (s *Server) apiInquiryStats(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			apiError(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = n
	}

	stats, err := s.inquiries.Stats(days)
	if err != nil {
		slog.Error("inquiry stats", "err", err)
		apiError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	apiJSON(w, stats, http.StatusOK)
}

func (s *Server) apiUpdateInquiry(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	inq, err := s.inquiries.UpdateStatus(id, inquiry.Status(req.Status))
	switch {
	case errors.Is(err, inquiry.ErrInvalid):
		apiError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, inquiry.ErrNotFound):
		apiError(w, "inquiry not found", http.StatusNotFound)
	case err != nil:
		slog.Error("updating inquiry", "id", id, "err", err)
		apiError(w, "failed to update inquiry", http.StatusInternalServerError)
	default:
		apiJSON(w, inq, http.StatusOK)
	}
}

func (s *Server) apiDeleteInquiry(w http.ResponseWriter, id string) {
	err := s.inquiries.Delete(id)
	switch {
	case errors.Is(err, inquiry.ErrNotFound):
		apiError(w, "inquiry not found", http.StatusNotFound)
	case err != nil:
		slog.Error("deleting inquiry", "id", id, "err", err)
		apiError(w, "failed to delete inquiry", http.StatusInternalServerError)
	default:
		apiJSON(w, map[string]string{"status": "deleted", "id": id}, http.StatusOK)
	}
}
