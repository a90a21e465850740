package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"

	"github.com/jsamuelsen/book-service/internal/platform/config"
)

// headerTraceID mirrors telemetry.HeaderTraceID; browsers only see exposed headers.
const headerTraceID = "X-Trace-ID"

// SecurityHeaders sets the browser hardening headers on every response.
// hsts adds Strict-Transport-Security and belongs behind TLS only.
func SecurityHeaders(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-XSS-Protection", "0")

		if hsts {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// CORS applies cfg to cross-origin requests. Preflight requests are
// answered here and never reach the router. It returns nil when no origin
// is allowed.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	origins := cfg.Origins()
	if len(origins) == 0 {
		return nil
	}

	policy := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderRequestID, HeaderCorrelationID, "traceparent"},
		ExposedHeaders:   []string{HeaderRequestID, HeaderCorrelationID, headerTraceID},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	})

	return func(c *gin.Context) {
		passed := false

		policy.Handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}
