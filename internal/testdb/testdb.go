// Package testdb provides a shared test database helper backed by a SQLite
// file in the test's temporary directory.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/helixml/splitmerge/infrastructure/persistence"
	"github.com/helixml/splitmerge/internal/database"
)

// New creates a SQLite catalog database with all migrations applied.
// The database is automatically closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), URL(t))
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// URL returns a fresh sqlite URL in the test's temporary directory.
func URL(t *testing.T) string {
	t.Helper()
	return "sqlite:///" + filepath.Join(t.TempDir(), "catalog.db")
}
