package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmatrack/pharmacy-api/internal/api/metrics"
	"github.com/pharmatrack/pharmacy-api/internal/core/service"
)

// Context keys set by Auth and read by the gate middleware and handlers.
const (
	CtxUserID      = "user_id"
	CtxEmail       = "email"
	CtxRole        = "role"
	CtxAccessLevel = "access_level"
)

// Auth verifies the bearer token and injects the decoded claims into the
// Echo context. Every verification failure maps to the same 401; the reason
// is never surfaced to the client.
func Auth(tokens *service.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := service.ExtractBearerToken(c.Request().Header.Get("Authorization"))
			if raw == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed authorization header")
			}

			claims := tokens.VerifyAccessToken(raw)
			if claims == nil {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxAccessLevel, claims.AccessLevel)

			return next(c)
		}
	}
}
