package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// Migrate applies all pending migrations for the pool's dialect and returns
// how many were applied. Already applied migrations are skipped.
func Migrate(ctx context.Context, d *DB) (int, error) {
	var dialect goose.Dialect
	switch d.Dialect {
	case DialectPostgres:
		dialect = goose.DialectPostgres
	case DialectSQLite:
		dialect = goose.DialectSQLite3
	default:
		return 0, fmt.Errorf("unsupported database dialect %q", d.Dialect)
	}

	fsys, err := fs.Sub(migrations, "migrations/"+string(d.Dialect))
	if err != nil {
		return 0, fmt.Errorf("loading migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, d.DB, fsys)
	if err != nil {
		return 0, fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("running migrations: %w", err)
	}
	return len(results), nil
}
