package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"
)

// unblockHandler handles POST /api/v1/unblock/:id. Removing the blacklist
// row resets the failure count for that IP.
func (s *Server) unblockHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}

	if err := s.store.DeleteBlacklistItem(c.Request().Context(), id); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}
