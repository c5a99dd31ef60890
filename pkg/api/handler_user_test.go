package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpatched/unpatched-server/pkg/models"
)

func TestUserHandlers(t *testing.T) {
	s := newTestServer(t)
	token := operatorToken(t, s)

	t.Run("created account can log in", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/users", UserPayload{
			Email:    "new@example.com",
			Password: "a decent passphrase",
			Roles:    models.StringList{"admin"},
			Active:   true,
		}, token)
		require.Equal(t, http.StatusCreated, rec.Code)

		login := doJSON(t, s, http.MethodPost, "/api/v1/authorize", AuthPayload{
			ClientID:     "new@example.com",
			ClientSecret: "a decent passphrase",
		}, "")
		assert.Equal(t, http.StatusOK, login.Code)
	})

	t.Run("stored hash never leaves the server", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/v1/users", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "argon2id")
		assert.NotContains(t, rec.Body.String(), "password")

		rec = doJSON(t, s, http.MethodGet, "/api/v1/users/new@example.com", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "argon2id")

		var got models.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "new@example.com", got.Email)
		assert.Equal(t, models.StringList{"admin"}, got.Roles)
		assert.True(t, got.Active)
	})

	t.Run("posting the same email replaces the account", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/users", UserPayload{
			Email:    "new@example.com",
			Password: "a different passphrase",
			Active:   true,
		}, token)
		require.Equal(t, http.StatusCreated, rec.Code)

		old := doJSON(t, s, http.MethodPost, "/api/v1/authorize", AuthPayload{
			ClientID:     "new@example.com",
			ClientSecret: "a decent passphrase",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, old.Code)

		fresh := doJSON(t, s, http.MethodPost, "/api/v1/authorize", AuthPayload{
			ClientID:     "new@example.com",
			ClientSecret: "a different passphrase",
		}, "")
		assert.Equal(t, http.StatusOK, fresh.Code)
	})

	t.Run("email must be well formed", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/users", UserPayload{
			Email:    "not-an-address",
			Password: "whatever",
		}, token)
		assert.Equal(t, http.StatusNotAcceptable, rec.Code)
		assert.Contains(t, rec.Body.String(), "Not a valid email address")
	})

	t.Run("password is required", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/users", UserPayload{
			Email: "short@example.com",
		}, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Missing credentials")
	})

	t.Run("unknown email is a 404", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/v1/users/nobody@example.com", nil, token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete removes the account", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodDelete, "/api/v1/users/new@example.com", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, s, http.MethodGet, "/api/v1/users/new@example.com", nil, token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
