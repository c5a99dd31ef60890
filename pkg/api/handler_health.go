package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/database"
	"github.com/unpatched/unpatched-server/pkg/version"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusUnhealthy = "unhealthy"
)

// healthHandler handles GET /api/v1/health.
// Returns a minimal, safe response suitable for unauthenticated access:
// database reachability and the number of connected agent sessions.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	status := healthStatusHealthy
	httpStatus := http.StatusOK

	dbHealth, err := database.Health(reqCtx, s.dbClient.DB().DB)
	if err != nil {
		status = healthStatusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, &HealthResponse{
		Status:   status,
		Version:  version.GitCommit,
		Database: dbHealth,
		Sessions: s.sessions.Len(),
	})
}
