package db

import (
	"context"
	"path/filepath"
	"testing"
)

// NewTestDB creates a fresh SQLite database in a temporary directory with all
// migrations applied.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite3")
	d, err := Open(Config{Dialect: DialectSQLite, DSN: SQLiteDSN(path), PoolSize: 4})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if _, err := Migrate(context.Background(), d); err != nil {
		d.Close()
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() { d.Close() })

	return d
}
