package kv

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kinglemuel/klp/internal/db"
	"github.com/kinglemuel/klp/internal/listing"
)

func setupSQLite(t *testing.T) *SQLite {
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
	return NewSQLite(d)
}

type backend interface {
	listing.KV
	listing.Updater
}

func backends(t *testing.T) map[string]backend {
	return map[string]backend{
		"sqlite": setupSQLite(t),
		"memory": NewMemory(),
	}
}

func TestGetSet(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get("missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
			}

			if err := kv.Set("k", "v1"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := kv.Set("k", "v2"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			v, ok, err := kv.Get("k")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !ok || v != "v2" {
				t.Errorf("Get(k) = %q, %v; want v2, true", v, ok)
			}

			if err := kv.Set("empty", ""); err != nil {
				t.Fatalf("set empty: %v", err)
			}
			if v, ok, _ := kv.Get("empty"); !ok || v != "" {
				t.Errorf("Get(empty) = %q, %v; want empty string present", v, ok)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := kv.Update("counter", func(old string, ok bool) (string, error) {
				if ok {
					t.Errorf("first update saw ok=true, old=%q", old)
				}
				return "1", nil
			})
			if err != nil {
				t.Fatalf("update: %v", err)
			}

			boom := errors.New("boom")
			err = kv.Update("counter", func(old string, ok bool) (string, error) {
				return "should not be written", boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("Update() error = %v, want boom", err)
			}

			v, _, err := kv.Get("counter")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if v != "1" {
				t.Errorf("value after failed update = %q, want 1", v)
			}
		})
	}
}

func TestStoreOverSQLite(t *testing.T) {
	kv := setupSQLite(t)
	seed, err := listing.DefaultSeed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := listing.NewStore(kv, seed)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(listing.Draft{
				Title:    "Concurrent",
				Location: "Vittin (Viting)",
				Category: listing.CategoryLand,
				Intent:   listing.IntentBuy,
				Images:   []string{"/a.jpg"},
			})
			if err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	_, uploaded := s.Counts()
	if uploaded != n {
		t.Errorf("got %d uploads after concurrent adds, want %d", uploaded, n)
	}

	if err := s.RemoveAll(); err != nil {
		t.Fatalf("remove all: %v", err)
	}
	reopened := listing.NewStore(kv, seed)
	if !reopened.SeedHidden() {
		t.Error("visibility flag not persisted")
	}
	if got := len(reopened.List()); got != 0 {
		t.Errorf("got %d listings after RemoveAll, want 0", got)
	}
}

func TestSQLiteClosedDB(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	kv := NewSQLite(d)

	if _, _, err := kv.Get("k"); err == nil || errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Get on closed db error = %v, want failure", err)
	}
	if err := kv.Set("k", "v"); err == nil {
		t.Error("Set on closed db succeeded")
	}
}
