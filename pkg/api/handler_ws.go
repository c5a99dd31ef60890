package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v5"

	"github.com/unpatched/unpatched-server/pkg/auth"
	"github.com/unpatched/unpatched-server/pkg/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Agents are not browsers; admission is the API key, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsHandler handles GET /ws. The host behind the API key must be admitted
// before the upgrade; a rejected agent never gets a socket.
func (s *Server) wsHandler(c *echo.Context) error {
	host, err := s.authorizer.AdmitAgent(c.Request().Context(), c.Request().Header.Get(auth.HeaderAPIKey))
	if err != nil {
		return mapAuthError(err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written its handshake error to the response.
		s.log.Warn("WebSocket upgrade failed", "host_id", host.ID, "error", err)
		return nil
	}

	sess := session.New(conn, s.store, host, session.Config{
		TickInterval:  s.cfg.TickInterval,
		SevenPartCron: s.cfg.SevenPartCron,
	})
	s.sessions.Register(sess)
	defer s.sessions.Unregister(sess)

	// Run blocks until the agent disconnects or the request context ends.
	sess.Run(c.Request().Context())
	return nil
}
