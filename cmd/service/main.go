// Package main is the entry point for the service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jsamuelsen/book-service/internal/adapters/http"
	"github.com/jsamuelsen/book-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/book-service/internal/adapters/persistence"
	"github.com/jsamuelsen/book-service/internal/adapters/persistence/migrations"
	"github.com/jsamuelsen/book-service/internal/app"
	"github.com/jsamuelsen/book-service/internal/platform/config"
	"github.com/jsamuelsen/book-service/internal/platform/logging"
	"github.com/jsamuelsen/book-service/internal/platform/telemetry"
	"github.com/jsamuelsen/book-service/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "book-service: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service and blocks until ctx is cancelled or the HTTP
// server fails. Resources are released in reverse order of acquisition.
func run(ctx context.Context) error {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("starting book service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("database_driver", cfg.Database.Driver),
	)

	// Telemetry is a noop provider when disabled.
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		Version:        cfg.App.Version,
		Environment:    cfg.App.Environment,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportInterval: cfg.Telemetry.ExportInterval,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		// ctx is already cancelled here; flushing gets its own budget.
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if shutdownErr := telProvider.Shutdown(flushCtx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("database close error", slog.Any("error", closeErr))
		}
	}()

	registry, err := newMetricsRegistry(db)
	if err != nil {
		return err
	}

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(persistence.NewHealthChecker(db)); err != nil {
		return fmt.Errorf("registering database health check: %w", err)
	}

	repo, err := persistence.NewBookRepository(db)
	if err != nil {
		return fmt.Errorf("creating book repository: %w", err)
	}

	bookService := app.NewBookService(app.BookServiceConfig{
		Repository: repo,
		Logger:     logger,
	})

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	buildInfo.Service = cfg.App.Name

	server := http.New(&cfg.Server, logger)

	routerCfg := http.NewDefaultRouterConfig(logger, &cfg.App, &cfg.Auth,
		handlers.NewHealthHandler(healthRegistry, buildInfo, handlers.WithGatherer(registry)),
		handlers.NewBookHandler(bookService),
	)
	routerCfg.Timeout = cfg.Server.RequestTimeout
	routerCfg.CORS = cfg.Server.CORS
	routerCfg.HSTS = cfg.Server.HSTS
	http.SetupRouter(server.Engine(), routerCfg)

	return serve(ctx, logger, server, cfg.Server.ShutdownTimeout)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			Level:      cfg.Log.File.Level,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
}

// openDatabase connects the configured store and, unless disabled, applies
// pending migrations before any request is served.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*persistence.DB, error) {
	db, err := persistence.Open(ctx, persistence.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		SlowThreshold:   cfg.Database.SlowThreshold,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if !cfg.Database.MigrateOnStart {
		return db, nil
	}

	if err := migrations.Up(ctx, db.SQL, db.Driver, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return db, nil
}

// newMetricsRegistry backs /-/metrics with runtime and pool collectors.
func newMetricsRegistry(db *persistence.DB) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := persistence.RegisterMetrics(registry, db); err != nil {
		return nil, err
	}

	return registry, nil
}

// serve runs server until ctx is cancelled, then drains in-flight requests
// within shutdownTimeout.
func serve(ctx context.Context, logger *slog.Logger, server *http.Server, shutdownTimeout time.Duration) error {
	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutdown requested", slog.Duration("timeout", shutdownTimeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-serverErr; err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}
