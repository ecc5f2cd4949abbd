package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/teranos/cashngo/db"
)

// CreateTestDB creates a migrated SQLite database in a temp directory.
// A file, not :memory:, so tests can open it from more than one connection.
// Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cashngo_test.db")
	conn, err := db.OpenWithMigrations(path, nil)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
	})

	return conn, path
}
