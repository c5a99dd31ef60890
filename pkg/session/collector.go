package session

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// readLoop consumes inbound frames until the connection dies. Ping and pong
// control frames are handled by the handlers wired in Run; everything else
// lands here.
func (s *Session) readLoop(ctx context.Context) {
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("session read failed", "error", err)
			} else {
				s.log.Debug("peer closed the session")
			}
			return
		}
		if msgType != websocket.TextMessage {
			s.log.Debug("ignoring non-text frame", "type", msgType, "bytes", len(data))
			continue
		}
		s.HandleFrame(ctx, string(data))
	}
}

// HandleFrame routes one text frame by its key. Unknown or malformed frames
// are logged and dropped; an agent can never take the session down with a
// bad message.
func (s *Session) HandleFrame(ctx context.Context, frame string) {
	kind, payload, found := strings.Cut(frame, ":")
	if !found {
		s.log.Debug("ignoring frame without a key", "frame", truncate(frame, 80))
		return
	}
	switch kind {
	case frameKindHost:
		s.handleHostAnnouncement(ctx, payload)
	case frameKindScript:
		s.handleScriptReply(ctx, payload)
	default:
		s.log.Debug("ignoring frame with unknown key", "key", kind)
	}
}

// handleHostAnnouncement refreshes the host row from the agent's
// self-description and replaces the session's snapshot. The ip always comes
// from the socket peer; the payload's ip is ignored.
func (s *Session) handleHostAnnouncement(ctx context.Context, payload string) {
	var announced models.Host
	if err := json.Unmarshal([]byte(payload), &announced); err != nil {
		s.log.Warn("failed to parse host announcement", "error", err)
		return
	}

	id := s.Host().ID
	if err := s.store.ApplyHostFacts(ctx, id, announced.Alias, announced.Attributes, s.peerIP); err != nil {
		s.log.Warn("failed to apply host facts", "error", err)
		return
	}
	fresh, err := s.store.GetHost(ctx, id)
	if err != nil {
		s.log.Warn("failed to reload host after announcement", "error", err)
		return
	}
	s.setHost(*fresh)
	s.log.Info("host announced itself", "alias", fresh.Alias, "attributes", fresh.Attributes)
}

// handleScriptReply finalizes a dispatched execution. The agent returns the
// script envelope with script_content carrying the captured output.
func (s *Session) handleScriptReply(ctx context.Context, payload string) {
	var reply scriptEnvelope
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		s.log.Warn("failed to parse script reply", "error", err)
		return
	}
	if reply.Script == nil {
		s.log.Warn("script reply without a script body", "execution_id", reply.ID)
		return
	}

	if err := s.store.CompleteExecution(ctx, reply.ID, models.Now(), reply.Script.ScriptContent); err != nil {
		s.log.Warn("failed to finalize execution", "execution_id", reply.ID, "error", err)
		return
	}
	s.log.Info("execution completed", "execution_id", reply.ID)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
