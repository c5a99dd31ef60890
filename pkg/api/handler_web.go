package api

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/web"
)

// webHandler serves the embedded UI for every path no other route claims.
// Unknown paths get the 404 page. The embedded filesystem rejects any path
// that escapes its root, so traversal attempts land on the 404 page too.
func (s *Server) webHandler(c *echo.Context) error {
	name := strings.TrimPrefix(c.Request().URL.Path, "/")
	if name == "" {
		name = "index.html"
	}

	page, err := web.Content.ReadFile(name)
	if err != nil {
		notFound, nfErr := web.Content.ReadFile("404.html")
		if nfErr != nil {
			return echo.NewHTTPError(http.StatusNotFound, "page not found")
		}
		return c.HTML(http.StatusNotFound, string(notFound))
	}
	return c.HTML(http.StatusOK, string(page))
}
