package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// listExecutionsHandler handles GET /api/v1/executions.
func (s *Server) listExecutionsHandler(c *echo.Context) error {
	executions, err := s.store.ListExecutions(c.Request().Context())
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, executions)
}

// getExecutionHandler handles GET /api/v1/executions/:id.
func (s *Server) getExecutionHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}

	execution, err := s.store.GetExecution(c.Request().Context(), id)
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, execution)
}

// createExecutionHandler handles POST /api/v1/executions. Normally the
// materializer writes these rows; the endpoint exists for ad-hoc runs and
// repairs. References to a missing host or schedule are rejected with 422.
func (s *Server) createExecutionHandler(c *echo.Context) error {
	var execution models.Execution
	if err := c.Bind(&execution); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if execution.ID == uuid.Nil {
		execution.ID = uuid.New()
	}

	if err := s.store.SaveExecution(c.Request().Context(), &execution); err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusCreated, execution.ID.String())
}

// deleteExecutionHandler handles DELETE /api/v1/executions/:id.
func (s *Server) deleteExecutionHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}

	if err := s.store.DeleteExecution(c.Request().Context(), id); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}

// deleteExecutionsHandler handles DELETE /api/v1/executions.
func (s *Server) deleteExecutionsHandler(c *echo.Context) error {
	if err := s.store.DeleteExecutions(c.Request().Context()); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}
