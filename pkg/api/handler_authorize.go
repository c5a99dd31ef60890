package api

import (
	"net"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/auth"
)

// authorizeHandler handles POST /api/v1/authorize. On success the token is
// returned both in the body (for API clients) and as a cookie (for the web
// UI).
func (s *Server) authorizeHandler(c *echo.Context) error {
	var payload AuthPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := s.authorizer.Login(c.Request().Context(), clientIP(c.Request()), payload.ClientID, payload.ClientSecret)
	if err != nil {
		return mapAuthError(err)
	}

	http.SetCookie(c.Response(), auth.NewTokenCookie(token))
	return c.JSON(http.StatusOK, &AuthBody{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

// logoutHandler handles GET /logout by expiring the token cookie.
func (s *Server) logoutHandler(c *echo.Context) error {
	http.SetCookie(c.Response(), auth.NewLogoutCookie())
	return c.NoContent(http.StatusOK)
}

// loginStatusHandler handles GET /loginstatus. Reaching it at all means the
// token middleware accepted the request.
func (s *Server) loginStatusHandler(c *echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// clientIP returns the peer address without the port. Blacklisting keys on
// the socket peer, never on forwarded headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
