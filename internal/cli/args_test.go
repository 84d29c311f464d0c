package cli

import (
	"testing"
)

func TestArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"add without file", []string{"add"}},
		{"add with two files", []string{"add", "a.json", "b.json"}},
		{"show without id", []string{"show"}},
		{"remove without id", []string{"remove"}},
		{"serve with args", []string{"serve", "extra"}},
		{"list with args", []string{"list", "extra"}},
		{"restore with args", []string{"restore", "now"}},
		{"inquiries update with one arg", []string{"inquiries", "update", "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("KLP_SERVER_URL", "http://127.0.0.1:1")
			if _, err := executeCommand(tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRemoveAllRequiresConfirmation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KLP_SERVER_URL", "http://127.0.0.1:1")

	_, err := executeCommand("remove-all")
	if err == nil || err.Error() != "remove-all deletes every uploaded property; rerun with --yes to confirm" {
		t.Fatalf("error = %v", err)
	}
}

func TestInquiriesRejectsUnknownStatus(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KLP_SERVER_URL", "http://127.0.0.1:1")

	if _, err := executeCommand("inquiries", "--status", "lost"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := executeCommand("inquiries", "update", "abc", "lost"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := executeCommand("inquiries", "stats", "--days", "0"); err == nil {
		t.Fatal("expected error for zero days")
	}
}
