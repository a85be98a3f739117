// Package repotest opens migrated SQLite databases for tests in other packages.
package repotest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/inotebook/inotebook-go/internal/repository"
)

// Open returns a migrated database in a fresh temp dir, closed on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "inotebook.db")
	db, err := repository.NewDB(context.Background(), repository.DriverSQLite, path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := repository.Migrate(context.Background(), db, repository.DriverSQLite); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
