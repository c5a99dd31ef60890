package api

import (
	"net/http"
	"net/mail"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/auth"
	"github.com/unpatched/unpatched-server/pkg/models"
)

// listUsersHandler handles GET /api/v1/users. Password hashes never
// serialize; the model excludes them from JSON.
func (s *Server) listUsersHandler(c *echo.Context) error {
	users, err := s.store.ListUsers(c.Request().Context())
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// getUserHandler handles GET /api/v1/users/:email.
func (s *Server) getUserHandler(c *echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	user, err := s.store.GetUserByEmail(c.Request().Context(), email)
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// createUserHandler handles POST /api/v1/users. The email is the primary
// key, so posting an existing address replaces the account. The cleartext
// password is hashed before it reaches the store.
func (s *Server) createUserHandler(c *echo.Context) error {
	var payload UserPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if payload.Email == "" || payload.Password == "" {
		return mapAuthError(auth.ErrMissingCredentials)
	}
	if _, err := mail.ParseAddress(payload.Email); err != nil {
		return mapAuthError(auth.ErrInvalidEmail)
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		ID:       payload.ID,
		Email:    payload.Email,
		Password: hash,
		Roles:    payload.Roles,
		Active:   payload.Active,
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if err := s.store.SaveUser(c.Request().Context(), &user); err != nil {
		return mapStoreError(err)
	}
	return c.JSON(http.StatusCreated, user.ID.String())
}

// deleteUserHandler handles DELETE /api/v1/users/:email.
func (s *Server) deleteUserHandler(c *echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	if err := s.store.DeleteUser(c.Request().Context(), email); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}

// deleteUsersHandler handles DELETE /api/v1/users.
func (s *Server) deleteUsersHandler(c *echo.Context) error {
	if err := s.store.DeleteUsers(c.Request().Context()); err != nil {
		return mapDeleteError(err)
	}
	return c.NoContent(http.StatusOK)
}
