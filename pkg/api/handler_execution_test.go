package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpatched/unpatched-server/pkg/models"
)

func TestExecutionHandlers(t *testing.T) {
	s := newTestServer(t)
	token := operatorToken(t, s)

	// An execution needs a host and a schedule to point at.
	scriptID := createScript(t, s, token, "uptime")

	hostRec := doJSON(t, s, http.MethodPost, "/api/v1/hosts", models.Host{Alias: "web-01", Active: true}, token)
	require.Equal(t, http.StatusCreated, hostRec.Code)
	var hostIDStr string
	require.NoError(t, json.Unmarshal(hostRec.Body.Bytes(), &hostIDStr))
	hostID := uuid.MustParse(hostIDStr)

	cron := "* * * * *"
	schedRec := doJSON(t, s, http.MethodPost, "/api/v1/schedules", models.Schedule{
		ScriptID: scriptID,
		Target:   models.Target{HostID: &hostID},
		Timer:    models.Timer{Cron: &cron},
		Active:   true,
	}, token)
	require.Equal(t, http.StatusCreated, schedRec.Code)
	var schedIDStr string
	require.NoError(t, json.Unmarshal(schedRec.Body.Bytes(), &schedIDStr))
	schedID := uuid.MustParse(schedIDStr)

	var execID uuid.UUID

	t.Run("create stores a pending execution", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/executions", models.Execution{
			Request: models.Now(),
			HostID:  hostID,
			SchedID: schedID,
		}, token)
		require.Equal(t, http.StatusCreated, rec.Code)

		var id string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))
		execID = uuid.MustParse(id)

		got := doJSON(t, s, http.MethodGet, "/api/v1/executions/"+id, nil, token)
		require.Equal(t, http.StatusOK, got.Code)
		var exec models.Execution
		require.NoError(t, json.Unmarshal(got.Body.Bytes(), &exec))
		assert.True(t, exec.IsPending())
		assert.Equal(t, hostID, exec.HostID)
		assert.Equal(t, schedID, exec.SchedID)
	})

	t.Run("referencing a missing host is a 422", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/executions", models.Execution{
			Request: models.Now(),
			HostID:  uuid.New(),
			SchedID: schedID,
		}, token)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "referenced entity does not exist")
	})

	t.Run("list returns the stored executions", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/v1/executions", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)

		var execs []models.Execution
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &execs))
		require.Len(t, execs, 1)
		assert.Equal(t, execID, execs[0].ID)
	})

	t.Run("delete all empties the table", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodDelete, "/api/v1/executions", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, s, http.MethodGet, "/api/v1/executions/"+execID.String(), nil, token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
