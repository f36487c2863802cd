// Package testutil provides shared test helpers for setting up site
// trees and staging databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/ansuz/internal/staging"
	"github.com/starford/ansuz/internal/storage"
)

// TestSite creates a temporary site root with a storage.Provider.
func TestSite(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// TestStaging creates a temporary staging database that is automatically
// cleaned up.
func TestStaging(t *testing.T) *staging.DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := staging.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
