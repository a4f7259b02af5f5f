// Package testutil provides shared test helpers for setting up source trees,
// documentation roots, and baseline databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/ccd/internal/baseline"
)

// TestBaseline creates a temporary baseline database that is automatically
// cleaned up.
func TestBaseline(t *testing.T) *baseline.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ccd-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := baseline.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestTree creates a temporary directory for use as a source or docs root.
func TestTree(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// WriteFile writes content under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// Touch sets the modification time of the file at path.
func Touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}
