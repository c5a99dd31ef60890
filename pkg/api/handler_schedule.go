package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// listSchedulesHandler handles GET /api/v1/schedules.
func (s *Server) listSchedulesHandler(c *echo.Context) error {
	schedules, err := s.store.ListSchedules(c.Request().Context())
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, schedules)
}

// getScheduleHandler handles GET /api/v1/schedules/:id.
func (s *Server) getScheduleHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}

	sched, err := s.store.GetSchedule(c.Request().Context(), id)
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, sched)
}

// createScheduleHandler handles POST /api/v1/schedules. The target and timer
// unions must each have exactly one member set; a reference to a missing
// script or host is rejected with 422.
func (s *Server) createScheduleHandler(c *echo.Context) error {
	var sched models.Schedule
	if err := c.Bind(&sched); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := sched.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if sched.ID == uuid.Nil {
		sched.ID = uuid.New()
	}

	if err := s.store.SaveSchedule(c.Request().Context(), &sched); err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusCreated, sched.ID.String())
}

// deleteScheduleHandler handles DELETE /api/v1/schedules/:id. Executions of
// the schedule cascade away with it.
func (s *Server) deleteScheduleHandler(c *echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}

	if err := s.store.DeleteSchedule(c.Request().Context(), id); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}

// deleteSchedulesHandler handles DELETE /api/v1/schedules.
func (s *Server) deleteSchedulesHandler(c *echo.Context) error {
	if err := s.store.DeleteSchedules(c.Request().Context()); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}
