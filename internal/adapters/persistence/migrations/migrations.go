// Package migrations owns the database schema. Versioned SQL files are
// embedded per dialect and applied with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed sql
var embedded embed.FS

// ErrUnknownDialect is returned for a driver without embedded migrations.
var ErrUnknownDialect = errors.New("no migrations for driver")

// dialects maps database driver names to goose dialects and migration dirs.
var dialects = map[string]struct {
	dialect goose.Dialect
	dir     string
}{
	"postgres": {dialect: goose.DialectPostgres, dir: "sql/postgres"},
	"sqlite":   {dialect: goose.DialectSQLite3, dir: "sql/sqlite"},
}

// NewProvider returns a goose provider for the embedded migrations of driver.
func NewProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, driver)
	}

	fsys, err := fs.Sub(embedded, d.dir)
	if err != nil {
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(d.dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("creating migration provider: %w", err)
	}

	return provider, nil
}

// Up applies every pending migration. Running it on an up-to-date schema is a no-op.
func Up(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) error {
	provider, err := NewProvider(db, driver)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		logger.InfoContext(ctx, "migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	logger.InfoContext(ctx, "schema up to date",
		slog.Int64("version", version),
		slog.Int("applied", len(results)),
	)

	return nil
}

// Down rolls back the most recently applied migration.
func Down(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) error {
	provider, err := NewProvider(db, driver)
	if err != nil {
		return err
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}

	logger.InfoContext(ctx, "migration rolled back",
		slog.Int64("version", result.Source.Version),
		slog.String("path", result.Source.Path),
		slog.Duration("duration", result.Duration),
	)

	return nil
}
