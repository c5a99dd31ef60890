package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// SaveBlacklistItem inserts or replaces a blacklist row.
func (s *Store) SaveBlacklistItem(ctx context.Context, b *models.BlacklistItem) error {
	if b.Created == "" {
		b.Created = models.Now()
	}
	const q = `REPLACE INTO blacklist (id, ip, tries, created, blocked, blocked_until)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		b.ID.String(), b.IP, b.Tries, b.Created, b.Blocked, b.BlockedUntil)
	if err != nil {
		return fmt.Errorf("failed to save blacklist item: %w", err)
	}
	return nil
}

// GetBlacklistItem returns one blacklist row by id, or ErrNotFound.
func (s *Store) GetBlacklistItem(ctx context.Context, id uuid.UUID) (*models.BlacklistItem, error) {
	var b models.BlacklistItem
	err := s.db.GetContext(ctx, &b, `SELECT * FROM blacklist WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blacklist item: %w", err)
	}
	return &b, nil
}

// GetBlacklistItemByIP returns the tracking row for one client IP, or
// ErrNotFound when the IP has no failed logins on record.
func (s *Store) GetBlacklistItemByIP(ctx context.Context, ip string) (*models.BlacklistItem, error) {
	var b models.BlacklistItem
	err := s.db.GetContext(ctx, &b, `SELECT * FROM blacklist WHERE ip = ? LIMIT 1`, ip)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blacklist item: %w", err)
	}
	return &b, nil
}

// ListBlacklistItems returns all blacklist rows.
func (s *Store) ListBlacklistItems(ctx context.Context) ([]models.BlacklistItem, error) {
	items := []models.BlacklistItem{}
	if err := s.db.SelectContext(ctx, &items, `SELECT * FROM blacklist`); err != nil {
		return nil, fmt.Errorf("failed to list blacklist items: %w", err)
	}
	return items, nil
}

// DeleteBlacklistItem removes one blacklist row. Unblocking an IP is this
// delete: the next failed login starts counting from scratch.
func (s *Store) DeleteBlacklistItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blacklist WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete blacklist item: %w", err)
	}
	return nil
}

// DeleteBlacklistItems removes all blacklist rows.
func (s *Store) DeleteBlacklistItems(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blacklist`); err != nil {
		return fmt.Errorf("failed to delete blacklist items: %w", err)
	}
	return nil
}

// CountBlacklistItems returns the number of blacklist rows.
func (s *Store) CountBlacklistItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(id) FROM blacklist`); err != nil {
		return 0, fmt.Errorf("failed to count blacklist items: %w", err)
	}
	return n, nil
}
