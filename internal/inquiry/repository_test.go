package inquiry

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kinglemuel/klp/internal/db"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return NewRepository(d)
}

func validInquiry() NewInquiry {
	return NewInquiry{
		ListingID: "1",
		Name:      "Fuseini",
		Email:     "fuseini@example.com",
		Phone:     "0244000000",
		Message:   "Is the plot still available?",
	}
}

func TestCreate(t *testing.T) {
	repo := testRepo(t)

	inq, err := repo.Create(validInquiry(), "Residential Plot at Sagnarigu")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inq.ID == "" {
		t.Error("expected generated ID")
	}
	if inq.Status != StatusPending {
		t.Errorf("status = %q, want pending", inq.Status)
	}

	got, err := repo.GetByID(inq.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ListingTitle != "Residential Plot at Sagnarigu" || got.Phone != "0244000000" {
		t.Errorf("read back %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := testRepo(t)

	tests := []struct {
		name   string
		mutate func(in *NewInquiry)
	}{
		{"missing listing", func(in *NewInquiry) { in.ListingID = "" }},
		{"missing name", func(in *NewInquiry) { in.Name = " " }},
		{"missing message", func(in *NewInquiry) { in.Message = "" }},
		{"bad email", func(in *NewInquiry) { in.Email = "not-an-email" }},
		{"email without tld", func(in *NewInquiry) { in.Email = "a@b" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInquiry()
			tt.mutate(&in)
			if _, err := repo.Create(in, ""); !errors.Is(err, ErrInvalid) {
				t.Fatalf("Create() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestListFilters(t *testing.T) {
	repo := testRepo(t)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	var created []*Inquiry
	for i, listingID := range []string{"1", "2", "1"} {
		repo.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		in := validInquiry()
		in.ListingID = listingID
		inq, err := repo.Create(in, "")
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		created = append(created, inq)
	}
	if _, err := repo.UpdateStatus(created[0].ID, StatusClosed); err != nil {
		t.Fatalf("update: %v", err)
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"all newest first", ListOptions{}, []string{created[2].ID, created[1].ID, created[0].ID}},
		{"by status", ListOptions{Status: StatusPending}, []string{created[2].ID, created[1].ID}},
		{"by listing", ListOptions{ListingID: "1"}, []string{created[2].ID, created[0].ID}},
		{"limit and offset", ListOptions{Limit: 1, Offset: 1}, []string{created[1].ID}},
		{"no match", ListOptions{Status: StatusContacted}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(tt.opts)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d inquiries, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("inquiry %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := testRepo(t)
	inq, err := repo.Create(validInquiry(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	later := time.Now().Add(time.Hour)
	repo.now = func() time.Time { return later }

	updated, err := repo.UpdateStatus(inq.ID, StatusContacted)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusContacted {
		t.Errorf("status = %q, want contacted", updated.Status)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("updated_at %v not after created_at %v", updated.UpdatedAt, updated.CreatedAt)
	}

	if _, err := repo.UpdateStatus(inq.ID, "archived"); !errors.Is(err, ErrInvalid) {
		t.Errorf("UpdateStatus(archived) error = %v, want ErrInvalid", err)
	}
	if _, err := repo.UpdateStatus("missing", StatusClosed); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := testRepo(t)
	inq, err := repo.Create(validInquiry(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(inq.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(inq.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(inq.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestStats(t *testing.T) {
	repo := testRepo(t)
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	ages := []int{1, 2, 10, 45}
	var ids []string
	for _, days := range ages {
		repo.now = func() time.Time { return now.AddDate(0, 0, -days) }
		inq, err := repo.Create(validInquiry(), "")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, inq.ID)
	}
	repo.now = func() time.Time { return now }
	if _, err := repo.UpdateStatus(ids[0], StatusContacted); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := repo.UpdateStatus(ids[3], StatusClosed); err != nil {
		t.Fatalf("update: %v", err)
	}

	tests := []struct {
		days int
		want Stats
	}{
		{30, Stats{PeriodDays: 30, Total: 3, Pending: 2, Contacted: 1}},
		{60, Stats{PeriodDays: 60, Total: 4, Pending: 2, Contacted: 1, Closed: 1}},
		{1, Stats{PeriodDays: 1, Total: 1, Contacted: 1}},
	}

	for _, tt := range tests {
		got, err := repo.Stats(tt.days)
		if err != nil {
			t.Fatalf("stats(%d): %v", tt.days, err)
		}
		if *got != tt.want {
			t.Errorf("Stats(%d) = %+v, want %+v", tt.days, *got, tt.want)
		}
	}

	if _, err := repo.Stats(0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestCountByStatus(t *testing.T) {
	repo := testRepo(t)
	var ids []string
	for range 3 {
		inq, err := repo.Create(validInquiry(), "")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, inq.ID)
	}
	if _, err := repo.UpdateStatus(ids[1], StatusClosed); err != nil {
		t.Fatalf("update: %v", err)
	}

	tests := []struct {
		status Status
		want   int
	}{
		{StatusPending, 2},
		{StatusContacted, 0},
		{StatusClosed, 1},
	}
	for _, tt := range tests {
		got, err := repo.CountByStatus(tt.status)
		if err != nil {
			t.Fatalf("CountByStatus(%s): %v", tt.status, err)
		}
		if got != tt.want {
			t.Errorf("CountByStatus(%s) = %d, want %d", tt.status, got, tt.want)
		}
	}
}
