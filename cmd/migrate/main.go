// Package main is the schema migration tool. It applies the same embedded
// migrations the service runs on start, against the configured database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"

	"github.com/jsamuelsen/book-service/internal/adapters/persistence"
	"github.com/jsamuelsen/book-service/internal/adapters/persistence/migrations"
	"github.com/jsamuelsen/book-service/internal/platform/config"
	"github.com/jsamuelsen/book-service/internal/platform/logging"
)

// CLI is the command structure for book-migrate.
type CLI struct {
	Env    string `help:"Configuration profile to load." env:"APP_ENVIRONMENT" default:"local"`
	Driver string `help:"Override database.driver (sqlite or postgres)."`
	DSN    string `help:"Override database.dsn." name:"dsn"`

	Up      UpCmd      `cmd:"" help:"Apply all pending migrations."`
	Down    DownCmd    `cmd:"" help:"Roll back the most recent migration."`
	Status  StatusCmd  `cmd:"" help:"List migrations and whether they are applied."`
	Version VersionCmd `cmd:"" help:"Print the current schema version."`
}

// runContext is bound into every command's Run method.
type runContext struct {
	ctx    context.Context
	db     *persistence.DB
	logger *slog.Logger
	out    io.Writer
}

// UpCmd applies pending migrations.
type UpCmd struct{}

// Run implements the up command.
func (UpCmd) Run(rc *runContext) error {
	return migrations.Up(rc.ctx, rc.db.SQL, rc.db.Driver, rc.logger)
}

// DownCmd rolls back one migration.
type DownCmd struct{}

// Run implements the down command.
func (DownCmd) Run(rc *runContext) error {
	return migrations.Down(rc.ctx, rc.db.SQL, rc.db.Driver, rc.logger)
}

// StatusCmd prints every known migration.
type StatusCmd struct{}

// Run implements the status command.
func (StatusCmd) Run(rc *runContext) error {
	provider, err := migrations.NewProvider(rc.db.SQL, rc.db.Driver)
	if err != nil {
		return err
	}

	statuses, err := provider.Status(rc.ctx)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}

	w := tabwriter.NewWriter(rc.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tSOURCE")

	for _, s := range statuses {
		appliedAt := "-"
		if !s.AppliedAt.IsZero() {
			appliedAt = s.AppliedAt.UTC().Format(time.RFC3339)
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, appliedAt, s.Source.Path)
	}

	return w.Flush()
}

// VersionCmd prints the schema version.
type VersionCmd struct{}

// Run implements the version command.
func (VersionCmd) Run(rc *runContext) error {
	provider, err := migrations.NewProvider(rc.db.SQL, rc.db.Driver)
	if err != nil {
		return err
	}

	version, err := provider.GetDBVersion(rc.ctx)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	_, err = fmt.Fprintln(rc.out, version)

	return err
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("book-migrate"),
		kong.Description("Manage the book-service database schema."),
		kong.UsageOnError(),
		kong.Writers(out, os.Stderr),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.Env)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cli.Driver != "" {
		cfg.Database.Driver = cli.Driver
	}

	if cli.DSN != "" {
		cfg.Database.DSN = cli.DSN
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Logs go to stderr so status and version output stays parseable.
	logger := logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "book-migrate",
		Version: cfg.App.Version,
	}, os.Stderr)

	db, err := persistence.Open(ctx, persistence.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // best effort on exit

	return kctx.Run(&runContext{ctx: ctx, db: db, logger: logger, out: out})
}
