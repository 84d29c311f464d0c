package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kinglemuel/klp/internal/auth"
	"github.com/kinglemuel/klp/internal/db"
)

func TestCleanupSessionsStopsOnCancel(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})
	if _, err := d.Exec(
		"INSERT INTO sessions (id, email, expires_at) VALUES (?, ?, ?)",
		"old", "admin@klp.test", time.Now().Add(-time.Hour),
	); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleanupSessions(ctx, auth.NewSessionStore(d, false), 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var n int
		if err := d.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
			t.Fatalf("count: %v", err)
		}
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expired session was not cleaned up")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}

func TestLoadSeed(t *testing.T) {
	builtin, err := loadSeed("")
	if err != nil {
		t.Fatalf("loadSeed(\"\"): %v", err)
	}
	if len(builtin) != 6 {
		t.Errorf("built-in seed = %d listings, want 6", len(builtin))
	}

	dir := t.TempDir()
	custom := filepath.Join(dir, "seed.json")
	content := `[{"id":"s-1","title":"Plot at Kamina","location":"Kamina","price":40000,` +
		`"propertyType":"land","purpose":"buy","images":["/img/kamina.jpg"],"createdAt":"2024-05-01T00:00:00Z"}]`
	if err := os.WriteFile(custom, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := loadSeed(custom)
	if err != nil {
		t.Fatalf("loadSeed(custom): %v", err)
	}
	if len(got) != 1 || got[0].ID != "s-1" || got[0].Title != "Plot at Kamina" {
		t.Errorf("custom seed = %+v", got)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"id":"uploaded-1","propertyType":"land","purpose":"buy"}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name, path, want string
	}{
		{"missing file", filepath.Join(dir, "missing.json"), "opening seed file"},
		{"invalid entry", bad, "bad.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadSeed(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}
