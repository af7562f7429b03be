package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmatrack/pharmacy-api/internal/api/metrics"
	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
)

// RBAC enforces role-based access control over the claims injected by Auth.
// A missing identity is an authentication failure (401), a role outside the
// allow-set an authorization failure (403). The split lets clients tell
// "log in first" apart from "you may not do this".
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(domain.Role)
			if !ok || role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if _, ok := allowed[role]; !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("role").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// RequireLevel passes requests whose access level claim is >= required.
// Levels are an ordered comparison, not set membership.
func RequireLevel(required domain.AccessLevel) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			level, ok := c.Get(CtxAccessLevel).(domain.AccessLevel)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if level < required {
				metrics.AuthRejectionsTotal.WithLabelValues("access_level").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "insufficient access level")
			}
			return next(c)
		}
	}
}
