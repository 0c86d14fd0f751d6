package publisher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOrCreateClientID_CreatesFile(t *testing.T) {
	dir := t.TempDir()

	id, err := LoadOrCreateClientID(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateClientID() error = %v", err)
	}
	if id == "" {
		t.Fatal("LoadOrCreateClientID() returned empty string")
	}
	if !strings.HasPrefix(id, "timesource-") {
		t.Errorf("id = %q, want timesource- prefix", id)
	}

	// Verify the file was written.
	data, err := os.ReadFile(filepath.Join(dir, "client_id"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != id {
		t.Errorf("file content = %q, want %q", got, id)
	}
}

func TestLoadOrCreateClientID_ReturnsExisting(t *testing.T) {
	dir := t.TempDir()

	// Create the first time.
	first, err := LoadOrCreateClientID(dir)
	if err != nil {
		t.Fatalf("first call error = %v", err)
	}

	// Second call should return the same value.
	second, err := LoadOrCreateClientID(dir)
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if second != first {
		t.Errorf("second = %q, want %q (should be stable)", second, first)
	}
}

func TestLoadOrCreateClientID_RespectsHandEditedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client_id")
	if err := os.WriteFile(path, []byte("my-custom-id\n"), 0644); err != nil {
		t.Fatal(err)
	}

	id, err := LoadOrCreateClientID(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateClientID() error = %v", err)
	}
	if id != "my-custom-id" {
		t.Errorf("id = %q, want %q", id, "my-custom-id")
	}
}
