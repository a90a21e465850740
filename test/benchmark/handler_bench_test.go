package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httpadapter "github.com/jsamuelsen/book-service/internal/adapters/http"
	"github.com/jsamuelsen/book-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/book-service/internal/adapters/persistence"
	"github.com/jsamuelsen/book-service/internal/adapters/persistence/migrations"
	"github.com/jsamuelsen/book-service/internal/app"
	"github.com/jsamuelsen/book-service/internal/domain"
	"github.com/jsamuelsen/book-service/internal/platform/config"
	"github.com/jsamuelsen/book-service/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createGinContext creates a Gin context for handler testing.
func createGinContext(w http.ResponseWriter, r *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = r
	return c
}

// setupHealthHandler creates a HealthHandler with a minimal registry for benchmarking.
func setupHealthHandler() *handlers.HealthHandler {
	registry := ports.NewHealthRegistry()
	buildInfo := handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z")
	return handlers.NewHealthHandler(registry, buildInfo)
}

// setupBookRouter serves the full router over a migrated sqlite file
// seeded with n books split across two genres.
func setupBookRouter(b *testing.B, n int) *gin.Engine {
	b.Helper()

	ctx := context.Background()
	logger := discardLogger()

	db, err := persistence.Open(ctx, persistence.Config{
		Driver: persistence.DriverSQLite,
		DSN:    "file:" + filepath.Join(b.TempDir(), "bench.db"),
		Logger: logger,
	})
	if err != nil {
		b.Fatal(err)
	}

	b.Cleanup(func() { _ = db.Close() })

	if err := migrations.Up(ctx, db.SQL, db.Driver, logger); err != nil {
		b.Fatal(err)
	}

	repo, err := persistence.NewBookRepository(db)
	if err != nil {
		b.Fatal(err)
	}

	for i := range n {
		genre := "Fiction"
		if i%2 == 1 {
			genre = "History"
		}

		_, err := repo.Create(ctx, domain.NewBook{
			Title:  fmt.Sprintf("Book %d", i),
			Author: "Bench",
			Genre:  genre,
			Price:  float64(10 + i%7),
		})
		if err != nil {
			b.Fatal(err)
		}
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:      logger,
		AppConfig:   &config.AppConfig{Name: "book-service"},
		BookHandler: handlers.NewBookHandler(app.NewBookService(app.BookServiceConfig{Repository: repo, Logger: logger})),
		Timeout:     httpadapter.DefaultRequestTimeout,
	})

	return engine
}

func benchmarkRoute(b *testing.B, engine *gin.Engine, method, path, body string, want int) {
	b.Helper()
	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		var reader io.Reader = http.NoBody
		if body != "" {
			reader = strings.NewReader(body)
		}

		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if w.Code != want {
			b.Fatalf("%s %s: status %d: %s", method, path, w.Code, w.Body.String())
		}
	}
}

// BenchmarkLivenessHandler measures the performance of the liveness endpoint.
// This is a critical path for Kubernetes probes and should be extremely fast.
func BenchmarkLivenessHandler(b *testing.B) {
	handler := setupHealthHandler()
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Liveness(c)
	}
}

// BenchmarkReadinessHandler_WithChecks measures readiness with registered health checks.
func BenchmarkReadinessHandler_WithChecks(b *testing.B) {
	registry := ports.NewHealthRegistry()
	_ = registry.Register(&simpleHealthChecker{name: "database"})

	handler := handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z"))
	req := httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Readiness(c)
	}
}

// BenchmarkGetAllBooks measures listing through the full middleware chain.
func BenchmarkGetAllBooks(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("books=%d", n), func(b *testing.B) {
			benchmarkRoute(b, setupBookRouter(b, n), http.MethodGet, "/books", "", http.StatusOK)
		})
	}
}

// BenchmarkGetBookByID measures a primary-key lookup.
func BenchmarkGetBookByID(b *testing.B) {
	benchmarkRoute(b, setupBookRouter(b, 100), http.MethodGet, "/books/42", "", http.StatusOK)
}

// BenchmarkGetDiscountedPrice measures the per-genre aggregate.
func BenchmarkGetDiscountedPrice(b *testing.B) {
	benchmarkRoute(b, setupBookRouter(b, 1000), http.MethodGet,
		"/books/discounted-price?genre=Fiction&discount=15", "", http.StatusOK)
}

// BenchmarkCreateBook measures validation plus insert.
func BenchmarkCreateBook(b *testing.B) {
	benchmarkRoute(b, setupBookRouter(b, 0), http.MethodPost, "/books",
		`{"title":"Dune","author":"Frank Herbert","genre":"Fiction","price":9.99}`, http.StatusCreated)
}

// BenchmarkCreateBook_Invalid measures the validation rejection path.
func BenchmarkCreateBook_Invalid(b *testing.B) {
	benchmarkRoute(b, setupBookRouter(b, 0), http.MethodPost, "/books",
		`{"title":"","price":-1}`, http.StatusBadRequest)
}

// simpleHealthChecker is a minimal health checker for benchmarking.
type simpleHealthChecker struct {
	name string
}

func (s *simpleHealthChecker) Name() string {
	return s.name
}

func (s *simpleHealthChecker) Check(_ context.Context) error {
	return nil
}
