package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/book-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/book-service/internal/platform/config"
	"github.com/jsamuelsen/book-service/internal/platform/logging"
)

// ContextKeyClaims is the gin context key holding *Claims.
const ContextKeyClaims = "claims"

// Identity headers used when AuthConfig leaves them empty.
const (
	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
	defaultScopesHeader  = "X-User-Scopes"
)

// Claims is the caller identity forwarded by the gateway, which has
// already validated the token.
type Claims struct {
	Subject string
	Roles   []string // comma-separated header
	Scopes  []string // space-separated header, as in OAuth2
}

// HasRole reports whether role was granted.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasScope reports whether scope was granted.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

type identityHeaders struct {
	subject, roles, scopes string
}

func headersFor(cfg *config.AuthConfig) identityHeaders {
	h := identityHeaders{
		subject: defaultSubjectHeader,
		roles:   defaultRolesHeader,
		scopes:  defaultScopesHeader,
	}

	if cfg == nil {
		return h
	}

	if cfg.SubjectHeader != "" {
		h.subject = cfg.SubjectHeader
	}

	if cfg.RolesHeader != "" {
		h.roles = cfg.RolesHeader
	}

	if cfg.ScopesHeader != "" {
		h.scopes = cfg.ScopesHeader
	}

	return h
}

func (h identityHeaders) extract(c *gin.Context) *Claims {
	claims := &Claims{Subject: strings.TrimSpace(c.GetHeader(h.subject))}

	for role := range strings.SplitSeq(c.GetHeader(h.roles), ",") {
		if role = strings.TrimSpace(role); role != "" {
			claims.Roles = append(claims.Roles, role)
		}
	}

	claims.Scopes = strings.Fields(c.GetHeader(h.scopes))
	if len(claims.Scopes) == 0 {
		claims.Scopes = nil
	}

	return claims
}

// ExtractClaims reads the identity headers named by cfg.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	return headersFor(cfg).extract(c)
}

// GetClaims returns the claims stored by RequireAuth, or nil.
func GetClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}

	return nil
}

// RequireAuth rejects requests without a subject with 401.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	headers := headersFor(cfg)

	return func(c *gin.Context) {
		claims := headers.extract(c)
		if claims.Subject == "" {
			deny(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", claims)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireRole rejects callers without role with 403.
func RequireRole(cfg *config.AuthConfig, role string) gin.HandlerFunc {
	return requireGrant(cfg, role, "")
}

// requireGrant passes callers holding role or scope; an empty value never
// matches.
func requireGrant(cfg *config.AuthConfig, role, scope string) gin.HandlerFunc {
	headers := headersFor(cfg)

	message := "Role " + role + " required"
	if scope != "" {
		message = "Role " + role + " or scope " + scope + " required"
		if role == "" {
			message = "Scope " + scope + " required"
		}
	}

	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			claims = headers.extract(c)
			c.Set(ContextKeyClaims, claims)
		}

		if (role != "" && claims.HasRole(role)) || (scope != "" && claims.HasScope(scope)) {
			c.Next()
			return
		}

		deny(c, http.StatusForbidden, dto.ErrorCodeForbidden, message, claims)
	}
}

// WriteAccess guards catalog mutations. It is empty when auth is disabled;
// otherwise a subject is required, plus the write role or write scope when
// either is configured.
func WriteAccess(cfg *config.AuthConfig) []gin.HandlerFunc {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	chain := []gin.HandlerFunc{RequireAuth(cfg)}
	if cfg.WriteRole != "" || cfg.WriteScope != "" {
		chain = append(chain, requireGrant(cfg, cfg.WriteRole, cfg.WriteScope))
	}

	return chain
}

func deny(c *gin.Context, status int, code, message string, claims *Claims) {
	ctx := c.Request.Context()

	logging.FromContext(ctx).InfoContext(ctx, "access denied",
		slog.Int("status", status),
		slog.String("subject", claims.Subject),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(code, message).WithTraceID(dto.GetTraceID(c)))
}
