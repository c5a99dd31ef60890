package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// listScriptsHandler handles GET /api/v1/scripts.
func (s *Server) listScriptsHandler(c *echo.Context) error {
	scripts, err := s.store.ListScripts(c.Request().Context())
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, scripts)
}

// getScriptHandler handles GET /api/v1/scripts/:id.
func (s *Server) getScriptHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}

	script, err := s.store.GetScript(c.Request().Context(), id)
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, script)
}

// createScriptHandler handles POST /api/v1/scripts.
func (s *Server) createScriptHandler(c *echo.Context) error {
	var script models.Script
	if err := c.Bind(&script); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if script.ID == uuid.Nil {
		script.ID = uuid.New()
	}

	if err := s.store.SaveScript(c.Request().Context(), &script); err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusCreated, script.ID.String())
}

// deleteScriptHandler handles DELETE /api/v1/scripts/:id. Schedules bound to
// the script cascade away with it.
func (s *Server) deleteScriptHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}

	if err := s.store.DeleteScript(c.Request().Context(), id); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}

// deleteScriptsHandler handles DELETE /api/v1/scripts.
func (s *Server) deleteScriptsHandler(c *echo.Context) error {
	if err := s.store.DeleteScripts(c.Request().Context()); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}
