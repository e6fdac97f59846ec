// Package testutil provides shared helpers for tests that need a real database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mkrupp/campuslink/internal/repo/database"
)

// OpenDatabase opens a fresh SQLite file in a temporary directory and applies the schema.
// The database is closed via t.Cleanup.
func OpenDatabase(t *testing.T) *database.Database {
	t.Helper()

	db := database.New(database.Config{
		Path:        filepath.Join(t.TempDir(), "campuslink.db"),
		BusyTimeout: 5000,
	})

	if err := db.Open(context.Background()); err != nil {
		t.Fatalf("open test db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	if err := db.InitializeSchema(context.Background()); err != nil {
		t.Fatalf("initialize test schema: %v", err)
	}

	return db
}

// ClosedDatabase returns a database that was never opened, for exercising the inactive path.
func ClosedDatabase(t *testing.T) *database.Database {
	t.Helper()

	return database.New(database.Config{Path: filepath.Join(t.TempDir(), "unused.db")})
}
