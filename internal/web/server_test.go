package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kinglemuel/klp/internal/auth"
	"github.com/kinglemuel/klp/internal/db"
	"github.com/kinglemuel/klp/internal/kv"
	"github.com/kinglemuel/klp/internal/listing"
	"github.com/kinglemuel/klp/internal/remote"
	"github.com/kinglemuel/klp/internal/upload"
)

const (
	testAdminEmail    = "admin@klp.test"
	testAdminPassword = "s3cret"
)

type fakeRemote struct {
	list      []*listing.Listing
	inactive  []*listing.Listing
	listErr   error
	createErr error
	created   []listing.Draft
	patches   map[string]listing.Patch
	deleted   []string
	restored  []string
}

func (f *fakeRemote) List(context.Context) ([]*listing.Listing, error) {
	return f.list, f.listErr
}

func (f *fakeRemote) Get(_ context.Context, id string) (*listing.Listing, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	for _, l := range f.list {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeRemote) Create(_ context.Context, d listing.Draft) (*listing.Listing, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, d)
	return d.Build(fmt.Sprintf("remote-%d", len(f.created)), testTime, listing.OriginRemote), nil
}

func (f *fakeRemote) SoftDelete(_ context.Context, id string) error {
	for _, l := range f.list {
		if l.ID == id {
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *fakeRemote) ListAll(_ context.Context, includeInactive bool) ([]remote.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	entries := []remote.Entry{}
	for _, l := range f.list {
		entries = append(entries, remote.Entry{Listing: l, Active: true})
	}
	if includeInactive {
		for _, l := range f.inactive {
			entries = append(entries, remote.Entry{Listing: l})
		}
	}
	return entries, nil
}

func (f *fakeRemote) Update(_ context.Context, id string, p listing.Patch) (*listing.Listing, error) {
	for _, l := range f.list {
		if l.ID != id {
			continue
		}
		if f.patches == nil {
			f.patches = make(map[string]listing.Patch)
		}
		f.patches[id] = p
		updated := *l
		if p.Title != nil {
			updated.Title = *p.Title
		}
		if p.Price != nil {
			updated.Price = *p.Price
		}
		return &updated, nil
	}
	return nil, remote.ErrNotFound
}

func (f *fakeRemote) Restore(_ context.Context, id string) error {
	for i, l := range f.inactive {
		if l.ID == id {
			f.inactive = append(f.inactive[:i], f.inactive[i+1:]...)
			f.list = append(f.list, l)
			f.restored = append(f.restored, id)
			return nil
		}
	}
	return remote.ErrNotFound
}

type fakeFiles struct {
	paths   []string
	body    []byte
	signed  []string
	signErr error
}

func (f *fakeFiles) Put(_ context.Context, objectPath, contentType string, size int64, body io.Reader) (*upload.File, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.paths = append(f.paths, objectPath)
	f.body = data
	return &upload.File{
		Name: filepath.Base(objectPath),
		Path: objectPath,
		URL:  "https://files.test/" + objectPath,
		Size: size,
		Type: contentType,
	}, nil
}

func (f *fakeFiles) SignUpload(_ context.Context, objectPath string) (*upload.SignedUpload, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	f.signed = append(f.signed, objectPath)
	return &upload.SignedUpload{
		Path:  objectPath,
		Token: "tok",
		URL:   "https://files.test/upload/sign/" + objectPath + "?token=tok",
	}, nil
}

type event struct{ op, id string }

type recordingNotifier struct {
	events []event
}

func (n *recordingNotifier) ListingsChanged(op, id string) {
	n.events = append(n.events, event{op, id})
}

type testEnv struct {
	srv      *Server
	store    *listing.Store
	kv       *kv.Memory
	notifier *recordingNotifier
	token    string
}

// newTestServer creates a server over a fresh database and the default
// seed, plus an admin API key.
func newTestServer(t *testing.T, opts Options) *testEnv {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	seed, err := listing.DefaultSeed()
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	mem := kv.NewMemory()
	store := listing.NewStore(mem, seed)

	n := &recordingNotifier{}
	opts.Notifier = n
	if opts.Auth == (auth.Config{}) {
		opts.Auth = auth.Config{AdminEmail: testAdminEmail, AdminPassword: testAdminPassword}
	}

	srv, err := NewServer(d, store, opts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	raw, _, err := srv.apiKeys.Create("test", testAdminEmail)
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}

	return &testEnv{srv: srv, store: store, kv: mem, notifier: n, token: raw}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	env := newTestServer(t, Options{})
	w := env.do(t, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode[map[string]string](t, w); got["status"] != "ok" {
		t.Errorf("body = %v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestServer(t, Options{})
	env.do(t, "GET", "/api/properties", "", nil)
	env.do(t, "GET", "/api/properties/1", "", nil)

	w := env.do(t, "GET", "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`klp_http_requests_total{code="200",method="GET",route="/api/properties"} 1`,
		`klp_http_requests_total{code="200",method="GET",route="/api/properties/{id}"} 1`,
		`klp_catalog_reads_total{source="local"} 1`,
		`klp_visible_listings 6`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/properties", "/api/properties"},
		{"/api/properties/uploaded-1-abc", "/api/properties/{id}"},
		{"/api/inquiries/stats", "/api/inquiries/stats"},
		{"/api/inquiries/0b1c", "/api/inquiries/{id}"},
		{"/api/remote/properties/9", "/api/remote/properties/{id}"},
		{"/api/keys/3", "/api/keys/{id}"},
		{"/api/properties/1/view", "/api/properties/{id}/view"},
		{"/api/properties/1/views", "/api/properties/{id}/views"},
		{"/api/remote/properties/9/restore", "/api/remote/properties/{id}/restore"},
		{"/api/properties/1/photos", "other"},
		{"/api/analytics/dashboard", "/api/analytics/dashboard"},
		{"/wp-login.php", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.path, nil)
			if got := routeLabel(r); got != tt.want {
				t.Errorf("routeLabel(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	env := newTestServer(t, Options{})

	routes := []struct {
		method, path string
	}{
		{"POST", "/api/properties"},
		{"DELETE", "/api/properties"},
		{"DELETE", "/api/properties/uploaded-1-abcdefgh"},
		{"POST", "/api/admin/remove-all"},
		{"POST", "/api/admin/restore"},
		{"GET", "/api/admin/status"},
		{"POST", "/api/remote/properties"},
		{"DELETE", "/api/remote/properties/1"},
		{"GET", "/api/remote/properties"},
		{"PATCH", "/api/remote/properties/1"},
		{"POST", "/api/remote/properties/1/restore"},
		{"GET", "/api/properties/1/views"},
		{"GET", "/api/analytics"},
		{"GET", "/api/analytics/dashboard"},
		{"POST", "/api/storage/signed-upload"},
		{"GET", "/api/inquiries"},
		{"GET", "/api/inquiries/stats"},
		{"PATCH", "/api/inquiries/x"},
		{"DELETE", "/api/inquiries/x"},
		{"POST", "/api/upload"},
		{"GET", "/api/keys"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := env.do(t, rt.method, rt.path, "", nil)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			w = env.do(t, rt.method, rt.path, "klp_bogus", nil)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("with bad key: status = %d, want 401", w.Code)
			}
		})
	}

	if len(env.notifier.events) != 0 {
		t.Errorf("unauthenticated requests produced events: %v", env.notifier.events)
	}
}
