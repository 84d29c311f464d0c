package auth

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kinglemuel/klp/internal/db"
)

func TestAPIKeyCreateAndValidate(t *testing.T) {
	store := testAPIKeyStore(t)

	rawKey, key, err := store.Create("laptop", "admin@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(rawKey, apiKeyPrefix) {
		t.Errorf("raw key %q missing prefix %q", rawKey, apiKeyPrefix)
	}
	if key.Name != "laptop" || key.Email != "admin@example.com" {
		t.Errorf("key = %+v", key)
	}
	if key.KeyPrefix != rawKey[:8] {
		t.Errorf("prefix = %q, want %q", key.KeyPrefix, rawKey[:8])
	}

	email, ok, err := store.Validate(rawKey)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !ok || email != "admin@example.com" {
		t.Errorf("Validate() = %q, %v; want admin email, true", email, ok)
	}

	keys, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 1 || keys[0].LastUsedAt == nil {
		t.Errorf("expected last_used_at to be recorded: %+v", keys)
	}
}

func TestAPIKeyValidateInvalid(t *testing.T) {
	store := testAPIKeyStore(t)

	_, ok, err := store.Validate("klp_boguskey12345678")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ok {
		t.Error("expected invalid key")
	}
}

func TestAPIKeyListAndDelete(t *testing.T) {
	store := testAPIKeyStore(t)

	if _, _, err := store.Create("Key 1", "admin@example.com"); err != nil {
		t.Fatalf("create 1: %v", err)
	}
	_, second, err := store.Create("Key 2", "admin@example.com")
	if err != nil {
		t.Fatalf("create 2: %v", err)
	}

	keys, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}

	if err := store.Delete(second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(second.ID); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("second delete error = %v, want ErrKeyNotFound", err)
	}

	keys, err = store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 1 || keys[0].Name != "Key 1" {
		t.Errorf("remaining keys = %+v", keys)
	}
}

func TestAPIKeyDeleteByRaw(t *testing.T) {
	store := testAPIKeyStore(t)

	raw, _, err := store.Create("cli", "admin@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := store.DeleteByRaw(raw)
	if err != nil || !deleted {
		t.Fatalf("DeleteByRaw() = %v, %v", deleted, err)
	}
	if _, ok, _ := store.Validate(raw); ok {
		t.Error("key still valid after DeleteByRaw")
	}
	deleted, err = store.DeleteByRaw(raw)
	if err != nil || deleted {
		t.Errorf("second DeleteByRaw() = %v, %v; want false, nil", deleted, err)
	}
}

func testAPIKeyStore(t *testing.T) *APIKeyStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return NewAPIKeyStore(d)
}
