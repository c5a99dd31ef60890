// Package session runs one live agent connection: the WebSocket transport
// plus the three cooperative tasks bound to it. The materializer turns
// schedules into execution rows, the dispatcher sends due executions to
// the agent, and the collector consumes the agent's replies.
package session

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unpatched/unpatched-server/pkg/models"
	"github.com/unpatched/unpatched-server/pkg/store"
)

// Frame keys of the text protocol. Every data frame is `key:payload`.
const (
	frameKindHost   = "host"
	frameKindScript = "script"
)

// pongPayload is the fixed reply to an agent's ping.
const pongPayload = "still here"

const (
	// DefaultTickInterval paces the materializer and dispatcher loops.
	DefaultTickInterval = 5 * time.Second

	writeWait = 10 * time.Second
)

// Config tunes a session. The zero value gets the default tick interval and
// the five-field cron dialect.
type Config struct {
	TickInterval  time.Duration
	SevenPartCron bool
}

// frameWriter is the outbound half of a session. The dispatcher writes
// through this interface so tests can substitute a recorder for the socket.
type frameWriter interface {
	WriteFrame(kind, payload string) error
	WritePing(payload string) error
}

// connWriter serializes text frames onto the gorilla connection. Control
// frames go through WriteControl, which gorilla allows concurrently with
// data writes.
type connWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *connWriter) WriteFrame(kind, payload string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, []byte(kind+":"+payload))
}

func (w *connWriter) WritePing(payload string) error {
	return w.conn.WriteControl(websocket.PingMessage, []byte(payload), time.Now().Add(writeWait))
}

// Session is one admitted agent connection. All tasks share the host
// snapshot cell; the collector replaces it when the agent announces itself.
type Session struct {
	conn   *websocket.Conn
	writer frameWriter
	store  *store.Store
	log    *slog.Logger

	peerIP        string
	interval      time.Duration
	sevenPartCron bool

	hostMu sync.RWMutex
	host   models.Host

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a session for an admitted host over an upgraded connection.
func New(conn *websocket.Conn, st *store.Store, host *models.Host, cfg Config) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	return &Session{
		conn:          conn,
		writer:        &connWriter{conn: conn},
		store:         st,
		log:           slog.With("host_id", host.ID),
		peerIP:        peerIP(conn),
		interval:      cfg.TickInterval,
		sevenPartCron: cfg.SevenPartCron,
		host:          *host,
		done:          make(chan struct{}),
	}
}

// Host returns a copy of the current host snapshot.
func (s *Session) Host() models.Host {
	s.hostMu.RLock()
	defer s.hostMu.RUnlock()
	return s.host
}

func (s *Session) setHost(h models.Host) {
	s.hostMu.Lock()
	defer s.hostMu.Unlock()
	s.host = h
}

// HostID returns the id of the bound host. It never changes over the
// session's lifetime.
func (s *Session) HostID() string {
	return s.Host().ID.String()
}

// Close tears the session down: the loops observe the done channel, the
// collector observes the closed connection. Safe to call more than once
// and from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
}

// Run drives the session until the peer disconnects, the context ends, or
// Close is called. The materializer and dispatcher run as goroutines; the
// collector read loop runs on the calling goroutine. Run returns only after
// all three have finished, so the caller can release the connection.
func (s *Session) Run(ctx context.Context) {
	s.log.Info("agent session established", "alias", s.Host().Alias, "ip", s.peerIP)

	s.conn.SetPingHandler(func(appData string) error {
		s.log.Debug("ping from agent", "payload", appData)
		return s.conn.WriteControl(websocket.PongMessage, []byte(pongPayload), time.Now().Add(writeWait))
	})
	s.conn.SetPongHandler(func(string) error {
		if err := s.store.TouchHostCheckin(ctx, s.Host().ID, models.Now()); err != nil {
			s.log.Warn("failed to record agent checkin", "error", err)
		}
		return nil
	})

	s.wg.Add(2)
	go s.materializeLoop(ctx)
	go s.dispatchLoop(ctx)

	s.readLoop(ctx)

	s.Close()
	s.wg.Wait()
	s.log.Info("agent session closed", "alias", s.Host().Alias)
}

// peerIP is the remote address without the port; it overrides whatever ip
// the agent claims for itself.
func peerIP(conn *websocket.Conn) string {
	addr := conn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
