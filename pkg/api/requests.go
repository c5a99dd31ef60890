package api

import (
	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// AuthPayload is the request body for POST /api/v1/authorize.
type AuthPayload struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// UserPayload is the request body for POST /api/v1/users. The password
// arrives in the clear and is stored as an argon2id hash.
type UserPayload struct {
	ID       uuid.UUID         `json:"id"`
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Roles    models.StringList `json:"roles"`
	Active   bool              `json:"active"`
}
