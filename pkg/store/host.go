package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// SaveHost inserts or replaces a host row. Created is stamped here when the
// caller leaves it empty.
func (s *Store) SaveHost(ctx context.Context, h *models.Host) error {
	if h.Created == "" {
		h.Created = models.Now()
	}
	const q = `REPLACE INTO hosts (id, alias, attributes, ip, active, last_checkin, created)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		h.ID.String(), h.Alias, h.Attributes, h.IP, h.Active, h.LastCheckin, h.Created)
	if err != nil {
		return fmt.Errorf("failed to save host: %w", err)
	}
	return nil
}

// GetHost returns one host by id, or ErrNotFound.
func (s *Store) GetHost(ctx context.Context, id uuid.UUID) (*models.Host, error) {
	var h models.Host
	err := s.db.GetContext(ctx, &h, `SELECT * FROM hosts WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	return &h, nil
}

// ListHosts returns all hosts.
func (s *Store) ListHosts(ctx context.Context) ([]models.Host, error) {
	hosts := []models.Host{}
	if err := s.db.SelectContext(ctx, &hosts, `SELECT * FROM hosts`); err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	return hosts, nil
}

// DeleteHost removes one host. Deleting a missing id succeeds silently;
// cascades take the host's schedules and executions with it.
func (s *Store) DeleteHost(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hosts WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete host: %w", err)
	}
	return nil
}

// DeleteHosts removes all hosts.
func (s *Store) DeleteHosts(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hosts`); err != nil {
		return fmt.Errorf("failed to delete hosts: %w", err)
	}
	return nil
}

// CountHosts returns the number of host rows.
func (s *Store) CountHosts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(id) FROM hosts`); err != nil {
		return 0, fmt.Errorf("failed to count hosts: %w", err)
	}
	return n, nil
}

// ApplyHostFacts refreshes the self-described fields of a host: alias and
// attributes from the agent's announcement, ip from the socket peer.
func (s *Store) ApplyHostFacts(ctx context.Context, id uuid.UUID, alias string, attributes models.StringList, ip string) error {
	const q = `UPDATE hosts SET alias = ?, attributes = ?, ip = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, alias, attributes, ip, id.String()); err != nil {
		return fmt.Errorf("failed to apply host facts: %w", err)
	}
	return nil
}

// TouchHostCheckin records the time of the agent's latest pong.
func (s *Store) TouchHostCheckin(ctx context.Context, id uuid.UUID, checkin string) error {
	const q = `UPDATE hosts SET last_checkin = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, checkin, id.String()); err != nil {
		return fmt.Errorf("failed to touch host checkin: %w", err)
	}
	return nil
}
