package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// listHostsHandler handles GET /api/v1/hosts.
func (s *Server) listHostsHandler(c *echo.Context) error {
	hosts, err := s.store.ListHosts(c.Request().Context())
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, hosts)
}

// getHostHandler handles GET /api/v1/hosts/:id.
func (s *Server) getHostHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}

	host, err := s.store.GetHost(c.Request().Context(), id)
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, host)
}

// createHostHandler handles POST /api/v1/hosts. Posting an existing id
// replaces the row; an omitted id is generated.
func (s *Server) createHostHandler(c *echo.Context) error {
	var host models.Host
	if err := c.Bind(&host); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if host.ID == uuid.Nil {
		host.ID = uuid.New()
	}

	if err := s.store.SaveHost(c.Request().Context(), &host); err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusCreated, host.ID.String())
}

// deleteHostHandler handles DELETE /api/v1/hosts/:id. The host's executions
// and host-targeted schedules cascade away with it.
func (s *Server) deleteHostHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}

	if err := s.store.DeleteHost(c.Request().Context(), id); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}

// deleteHostsHandler handles DELETE /api/v1/hosts.
func (s *Server) deleteHostsHandler(c *echo.Context) error {
	if err := s.store.DeleteHosts(c.Request().Context()); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}
