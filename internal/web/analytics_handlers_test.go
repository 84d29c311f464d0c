package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kinglemuel/klp/internal/analytics"
	"github.com/kinglemuel/klp/internal/inquiry"
)

func TestTrackView(t *testing.T) {
	env := newTestServer(t, Options{})

	r := httptest.NewRequest("POST", "/api/properties/3/view", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.Header.Set("User-Agent", "klp-test")
	w := httptest.NewRecorder()
	env.srv.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}

	if w := env.do(t, "POST", "/api/properties/3/view", "", nil); w.Code != http.StatusNoContent {
		t.Errorf("second view status = %d", w.Code)
	}
	if w := env.do(t, "POST", "/api/properties/missing/view", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown listing status = %d, want 404", w.Code)
	}
	if w := env.do(t, "GET", "/api/properties/3/view", "", nil); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET view status = %d, want 405", w.Code)
	}

	w = env.do(t, "GET", "/api/properties/3/views?period=7", env.token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("views status = %d; body: %s", w.Code, w.Body.String())
	}
	got := decode[analytics.ListingViews](t, w)
	if got.TotalViews != 2 || got.UniqueIPs != 2 || got.PeriodDays != 7 {
		t.Errorf("views = %+v", got)
	}
	if len(got.RecentViews) != 2 || got.RecentViews[1].IPAddress != "203.0.113.7" || got.RecentViews[1].UserAgent != "klp-test" {
		t.Errorf("recent views = %+v", got.RecentViews)
	}

	if w := env.do(t, "GET", "/api/properties/3/views?period=soon", env.token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", w.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		fwd    string
		remote string
		want   string
	}{
		{"forwarded chain", "198.51.100.2, 10.0.0.1", "10.0.0.1:5000", "198.51.100.2"},
		{"peer address", "", "192.0.2.10:41234", "192.0.2.10"},
		{"peer without port", "", "192.0.2.10", "192.0.2.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.fwd != "" {
				r.Header.Set("X-Forwarded-For", tt.fwd)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnalyticsSummary(t *testing.T) {
	env := newTestServer(t, Options{})
	for _, id := range []string{"2", "2", "5", "uploaded-gone"} {
		if err := env.srv.views.Record(id, "10.0.0.1", "test"); err != nil {
			t.Fatalf("record view: %v", err)
		}
	}
	if _, err := env.srv.inquiries.Create(inquiry.NewInquiry{
		ListingID: "2",
		Name:      "Ama",
		Email:     "ama@example.com",
		Message:   "Is the plot still available?",
	}, "Residential Plot at Sagnarigu"); err != nil {
		t.Fatalf("create inquiry: %v", err)
	}

	w := env.do(t, "GET", "/api/analytics?period=7", env.token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	got := decode[analytics.Summary](t, w)

	if got.Period != "7 days" || got.Properties.Total != 6 || got.Properties.Featured != 2 {
		t.Errorf("properties = %+v (period %q)", got.Properties, got.Period)
	}
	if got.Properties.ByType != (analytics.TypeCounts{Land: 3, House: 3}) {
		t.Errorf("by type = %+v", got.Properties.ByType)
	}
	if got.Views.Total != 4 || got.Views.UniqueProperties != 3 {
		t.Errorf("views = %+v", got.Views)
	}
	if len(got.Views.MostViewed) != 2 || got.Views.MostViewed[0].ID != "2" || got.Views.MostViewed[0].ViewCount != 2 {
		t.Errorf("most viewed = %+v", got.Views.MostViewed)
	}
	if got.Inquiries.Total != 1 || got.Inquiries.ByStatus.Pending != 1 {
		t.Errorf("inquiries = %+v", got.Inquiries)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/analytics?period=0", http.StatusBadRequest},
		{"/api/analytics?period=week", http.StatusBadRequest},
		{"/api/analytics/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if w := env.do(t, "GET", tt.path, env.token, nil); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
	if w := env.do(t, "POST", "/api/analytics", env.token, nil); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", w.Code)
	}
}

func TestAnalyticsDashboard(t *testing.T) {
	env := newTestServer(t, Options{})

	var ids []string
	for i, name := range []string{"Ama", "Kofi", "Esi"} {
		inq, err := env.srv.inquiries.Create(inquiry.NewInquiry{
			ListingID: "1",
			Name:      name,
			Email:     "visitor@example.com",
			Message:   "Viewing this weekend?",
		}, "Four Bedroom House at Kalpohin Estate")
		if err != nil {
			t.Fatalf("create inquiry %d: %v", i, err)
		}
		ids = append(ids, inq.ID)
	}
	if _, err := env.srv.inquiries.UpdateStatus(ids[0], inquiry.StatusContacted); err != nil {
		t.Fatalf("update: %v", err)
	}
	for range 3 {
		if err := env.srv.views.Record("1", "10.0.0.1", "test"); err != nil {
			t.Fatalf("record view: %v", err)
		}
	}

	w := env.do(t, "GET", "/api/analytics/dashboard", env.token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	got := decode[analytics.Dashboard](t, w)
	if got.TotalProperties != 6 || got.PendingInquiries != 2 || got.TotalViews != 3 {
		t.Errorf("dashboard = %+v", got)
	}
	if len(got.RecentInquiries) != 3 {
		t.Errorf("recent inquiries = %d, want 3", len(got.RecentInquiries))
	}
}
