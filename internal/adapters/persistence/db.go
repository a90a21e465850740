// Package persistence implements the data access layer on top of gorm.
// Both PostgreSQL (pgx pool) and SQLite (pure-Go modernc driver) are supported;
// either way gorm runs over a *sql.DB that goose migrations can share.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jsamuelsen/book-service/internal/platform/logging"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnsupportedDriver is returned by Open for an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Config configures the database connection.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
	Logger          *slog.Logger
}

// DB bundles the gorm handle with the underlying connection pool.
type DB struct {
	Gorm   *gorm.DB
	SQL    *sql.DB
	Driver string

	pool *pgxpool.Pool
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		db        = &DB{Driver: cfg.Driver}
		dialector gorm.Dialector
	)

	switch cfg.Driver {
	case DriverPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parsing postgres dsn: %w", err)
		}

		if cfg.MaxOpenConns > 0 {
			poolCfg.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // bounded by config validation
		}

		if cfg.ConnMaxLifetime > 0 {
			poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("creating postgres pool: %w", err)
		}

		db.pool = pool
		db.SQL = stdlib.OpenDBFromPool(pool)
		dialector = postgres.New(postgres.Config{Conn: db.SQL})

	case DriverSQLite:
		sqlDB, err := sql.Open(DriverSQLite, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}

		// SQLite allows a single writer; one connection also keeps
		// in-memory databases from splitting across connections.
		sqlDB.SetMaxOpenConns(1)

		db.SQL = sqlDB
		dialector = sqlite.New(sqlite.Config{DriverName: DriverSQLite, Conn: sqlDB})

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	if cfg.Driver != DriverSQLite {
		tunePool(db.SQL, cfg)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 NewGormLogger(logger, cfg.SlowThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening gorm: %w", err)
	}

	db.Gorm = gdb

	if err := db.SQL.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.InfoContext(ctx, "database connected",
		slog.String("driver", cfg.Driver),
		slog.String("dsn", logging.RedactDSN(cfg.DSN)),
		slog.Int("max_open_conns", db.SQL.Stats().MaxOpenConnections),
	)

	return db, nil
}

// Close releases the connection pool.
func (d *DB) Close() error {
	var err error
	if d.SQL != nil {
		err = d.SQL.Close()
	}

	if d.pool != nil {
		d.pool.Close()
	}

	return err
}

func tunePool(sqlDB *sql.DB, cfg Config) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}
