package api

import (
	"log/slog"

	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/auth"
)

// securityHeaders returns middleware that sets standard security response headers.
func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			return next(c)
		}
	}
}

// requireToken returns middleware that rejects requests without a valid
// operator token. The token may arrive as a bearer header or as the login
// cookie; both are verified against the signing secret.
func requireToken(issuer *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			token, err := auth.TokenFromRequest(c.Request())
			if err != nil {
				return mapAuthError(err)
			}
			claims, err := issuer.Verify(token)
			if err != nil {
				return mapAuthError(err)
			}
			slog.Debug("Operator request authorized",
				"subject", claims.Subject,
				"path", c.Request().URL.Path)
			return next(c)
		}
	}
}
