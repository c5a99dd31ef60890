package api

import (
	"github.com/unpatched/unpatched-server/pkg/database"
)

// AuthBody is returned by POST /api/v1/authorize. The same token also
// travels as a cookie for the web UI.
type AuthBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status   string                 `json:"status"`
	Version  string                 `json:"version"`
	Database *database.HealthStatus `json:"database"`
	Sessions int                    `json:"sessions"`
}
