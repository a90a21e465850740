package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/book-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/book-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/book-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/book-service/internal/platform/config"
	"github.com/jsamuelsen/book-service/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for /books requests.
const DefaultRequestTimeout = config.DefaultRequestTimeout

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the base logger; each request gets a child with its IDs.
	Logger *slog.Logger

	// AuthConfig controls the identity headers guarding write routes.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles the /-/ endpoints. Optional.
	HealthHandler *handlers.HealthHandler

	// BookHandler handles the /books endpoints. Optional.
	BookHandler *handlers.BookHandler

	// Timeout bounds each /books request. Zero disables it.
	Timeout time.Duration

	// CORS controls browser cross-origin access. No origins disables it.
	CORS config.CORSConfig

	// HSTS adds Strict-Transport-Security to every response.
	HSTS bool
}

// SetupRouter installs the middleware chain and mounts the /-/ and /books
// routes on engine.
//
// Every request passes through panic recovery, the security headers and
// CORS, the request logger, the request and correlation IDs, tracing and
// metrics, then the access log. CORS preflights stop before the logger.
// Probes under /-/ carry no deadline and no auth; /books requests are
// bounded by cfg.Timeout and writes go through middleware.WriteAccess.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(middleware.Recovery(cfg.Logger), middleware.SecurityHeaders(cfg.HSTS))
	if cors := middleware.CORS(cfg.CORS); cors != nil {
		engine.Use(cors)
	}

	engine.Use(
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(serviceName(cfg.AppConfig))...)
	engine.Use(middleware.AccessLog())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group("")
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.BookHandler != nil {
		cfg.BookHandler.RegisterBookRoutes(api, middleware.WriteAccess(cfg.AuthConfig)...)
	}

	engine.NoRoute(notFound)
}

// NewDefaultRouterConfig returns a RouterConfig using DefaultRequestTimeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	healthHandler *handlers.HealthHandler,
	bookHandler *handlers.BookHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AuthConfig:    authCfg,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		BookHandler:   bookHandler,
		Timeout:       DefaultRequestTimeout,
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeNotFound, dto.MessageResourceNotFound).
		WithTraceID(dto.GetTraceID(c)))
}

func serviceName(cfg *config.AppConfig) string {
	if cfg == nil || cfg.Name == "" {
		return "book-service"
	}

	return cfg.Name
}
