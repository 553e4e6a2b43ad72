// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/carterperez-dev/currency-tracker/internal/config"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema for the database dialect.
func Migrate(ctx context.Context, db *Database) error {
	var (
		dialect goose.Dialect
		dir     string
	)

	switch db.Driver {
	case config.DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	case config.DriverPostgres:
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	default:
		return fmt.Errorf("migrate: unsupported driver %q", db.Driver)
	}

	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.DB.DB, sub)
	if err != nil {
		return fmt.Errorf("migrate: create provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}

	for _, res := range results {
		slog.Debug("migration applied",
			"version", res.Source.Version,
			"duration", res.Duration,
		)
	}

	return nil
}
