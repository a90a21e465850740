//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	httpadapter "github.com/jsamuelsen/book-service/internal/adapters/http"
	"github.com/jsamuelsen/book-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/book-service/internal/adapters/persistence"
	"github.com/jsamuelsen/book-service/internal/adapters/persistence/migrations"
	"github.com/jsamuelsen/book-service/internal/app"
	"github.com/jsamuelsen/book-service/internal/platform/config"
	"github.com/jsamuelsen/book-service/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// service is an in-process book service backed by a sqlite file.
type service struct {
	server *httptest.Server
	db     *persistence.DB
	dir    string
}

// startService opens a fresh database, migrates it and serves the full
// router on a loopback listener.
func startService(ctx context.Context, auth *config.AuthConfig) (*service, error) {
	dir, err := os.MkdirTemp("", "book-service-it-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := persistence.Open(ctx, persistence.Config{
		Driver: persistence.DriverSQLite,
		DSN:    "file:" + filepath.Join(dir, "books.db") + "?_pragma=busy_timeout(5000)",
		Logger: logger,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	svc := &service{db: db, dir: dir}

	if err := migrations.Up(ctx, db.SQL, db.Driver, logger); err != nil {
		svc.Close()
		return nil, err
	}

	repo, err := persistence.NewBookRepository(db)
	if err != nil {
		svc.Close()
		return nil, err
	}

	registry := ports.NewHealthRegistry()
	if err := registry.Register(persistence.NewHealthChecker(db)); err != nil {
		svc.Close()
		return nil, err
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        logger,
		AuthConfig:    auth,
		AppConfig:     &config.AppConfig{Name: "book-service", Version: "it", Environment: "test"},
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("it", "none", "now")),
		BookHandler:   handlers.NewBookHandler(app.NewBookService(app.BookServiceConfig{Repository: repo, Logger: logger})),
		Timeout:       5 * time.Second,
	})

	svc.server = httptest.NewServer(engine)

	return svc, nil
}

// URL returns the base URL of the running service.
func (s *service) URL() string {
	return s.server.URL
}

// Close stops the server and removes the database.
func (s *service) Close() {
	if s.server != nil {
		s.server.Close()
	}

	_ = s.db.Close()
	_ = os.RemoveAll(s.dir)
}
