// Package testutil provides shared test helpers for setting up scratch
// indexes and note trees.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/index"
)

// TestStore creates a temporary index database that is automatically
// cleaned up.
func TestStore(t *testing.T) *index.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ansuz-test.db")

	db, err := index.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteNote writes a note file under dir with a controlled modification
// time and returns its absolute path.
func WriteNote(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatal(err)
	}
	return abs
}
