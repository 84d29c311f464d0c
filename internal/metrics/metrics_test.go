package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	})
	route := func(r *http.Request) string { return r.URL.Path }
	h := m.Middleware(route, inner)

	for _, p := range []string{"/api/properties", "/api/properties", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", p, nil))
	}

	out := scrape(t, m)
	for _, want := range []string{
		`klp_http_requests_total{code="200",method="GET",route="/api/properties"} 2`,
		`klp_http_requests_total{code="404",method="GET",route="/missing"} 1`,
		`klp_http_request_duration_seconds_count{route="/api/properties"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMutationAndCatalogCounters(t *testing.T) {
	m := New()
	m.Mutation("added")
	m.Mutation("added")
	m.Mutation("restored")
	m.CatalogRead("remote")
	m.CatalogRead("")
	m.WatchListings(func() (int, int) { return 6, 2 })

	out := scrape(t, m)
	for _, want := range []string{
		`klp_listing_mutations_total{op="added"} 2`,
		`klp_listing_mutations_total{op="restored"} 1`,
		`klp_catalog_reads_total{source="remote"} 1`,
		`klp_catalog_reads_total{source="none"} 1`,
		`klp_visible_listings 8`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
