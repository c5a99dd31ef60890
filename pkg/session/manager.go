package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager tracks the live sessions. A second connection for a host that
// already has one is tracked alongside it, not force-closed; the claim step
// in the dispatcher keeps duplicate sessions from double-dispatching.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID][]*Session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID][]*Session),
	}
}

// Register adds a session under its host id.
func (m *Manager) Register(s *Session) {
	id := s.Host().ID

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions[id]) > 0 {
		slog.Warn("duplicate agent session for host", "host_id", id, "live", len(m.sessions[id]))
	}
	m.sessions[id] = append(m.sessions[id], s)
}

// Unregister removes a session; unknown sessions are ignored.
func (m *Manager) Unregister(s *Session) {
	id := s.Host().ID

	m.mu.Lock()
	defer m.mu.Unlock()
	live := m.sessions[id]
	for i := range live {
		if live[i] == s {
			m.sessions[id] = append(live[:i], live[i+1:]...)
			break
		}
	}
	if len(m.sessions[id]) == 0 {
		delete(m.sessions, id)
	}
}

// Len returns the number of live sessions across all hosts.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, live := range m.sessions {
		n += len(live)
	}
	return n
}

// CloseAll closes every live session. Used on server shutdown; each Run
// returns once its tasks observe the closed connection.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, live := range m.sessions {
		all = append(all, live...)
	}
	m.mu.RUnlock()

	for _, s := range all {
		s.Close()
	}
}
