package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/auth"
	"github.com/unpatched/unpatched-server/pkg/store"
)

// mapAuthError maps auth-layer errors to HTTP error responses. The status
// and message pairs are part of the login API contract: a blocked IP gets
// the same 401 as a wrong password.
func mapAuthError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, auth.ErrWrongCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Wrong credentials")
	case errors.Is(err, auth.ErrMissingCredentials):
		return echo.NewHTTPError(http.StatusBadRequest, "Missing credentials")
	case errors.Is(err, auth.ErrInvalidEmail):
		return echo.NewHTTPError(http.StatusNotAcceptable, "Not a valid email address")
	case errors.Is(err, auth.ErrTokenCreation):
		return echo.NewHTTPError(http.StatusInternalServerError, "Token creation error")
	case errors.Is(err, auth.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid token")
	case errors.Is(err, auth.ErrAgentUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "agent not authorized")
	}

	// Unexpected error
	slog.Error("Unexpected auth error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// mapStoreError maps store-layer errors on reads and creates. Failed foreign
// key references surface as 422 so API clients can distinguish a bad
// reference from a malformed body.
func mapStoreError(err error) *echo.HTTPError {
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	if errors.Is(err, store.ErrConstraint) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "referenced entity does not exist")
	}

	// Unexpected error
	slog.Error("Unexpected store error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// mapDeleteError maps store-layer errors on deletes. Deleting an absent row
// is a success; only a store failure is rejected.
func mapDeleteError(err error) *echo.HTTPError {
	slog.Error("Delete failed", "error", err)
	return echo.NewHTTPError(http.StatusForbidden, "delete failed")
}
