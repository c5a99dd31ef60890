package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpatched/unpatched-server/pkg/auth"
	"github.com/unpatched/unpatched-server/pkg/models"
)

func TestWSHandler_Rejections(t *testing.T) {
	s := newTestServer(t)

	inactive := &models.Host{ID: uuid.New(), Alias: "retired", Active: false}
	require.NoError(t, s.store.SaveHost(context.Background(), inactive))

	upgrade := func(apiKey string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if apiKey != "" {
			req.Header.Set(auth.HeaderAPIKey, apiKey)
		}
		rec := httptest.NewRecorder()
		s.echo.ServeHTTP(rec, req)
		return rec
	}

	cases := []struct {
		name   string
		apiKey string
	}{
		{name: "missing key", apiKey: ""},
		{name: "key is not a uuid", apiKey: "beep-boop"},
		{name: "unknown host", apiKey: uuid.NewString()},
		{name: "deactivated host", apiKey: inactive.ID.String()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := upgrade(tc.apiKey)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "agent not authorized")
		})
	}
}

func TestWSHandler_SessionLifecycle(t *testing.T) {
	s := newTestServer(t)

	host := &models.Host{ID: uuid.New(), Alias: "web-01", Active: true}
	require.NoError(t, s.store.SaveHost(context.Background(), host))

	server := httptest.NewServer(s.echo)
	t.Cleanup(server.Close)
	wsURL := strings.Replace(server.URL, "http", "ws", 1) + "/ws"

	header := http.Header{}
	header.Set(auth.HeaderAPIKey, host.ID.String())

	t.Run("rejected dial reports the handshake status", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("admitted agent is tracked until it disconnects", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		require.NoError(t, err)
		require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

		require.Eventually(t, func() bool {
			return s.sessions.Len() == 1
		}, 2*time.Second, 10*time.Millisecond)

		require.NoError(t, conn.Close())
		require.Eventually(t, func() bool {
			return s.sessions.Len() == 0
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("close all tears down live sessions", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
		require.NoError(t, err)
		defer conn.Close()

		require.Eventually(t, func() bool {
			return s.sessions.Len() == 1
		}, 2*time.Second, 10*time.Millisecond)

		s.sessions.CloseAll()
		require.Eventually(t, func() bool {
			return s.sessions.Len() == 0
		}, 2*time.Second, 10*time.Millisecond)
	})
}
