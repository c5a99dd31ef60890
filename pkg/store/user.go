package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// SaveUser inserts or replaces a user row. Email is the primary key, so
// saving an existing email overwrites that account.
func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	if u.Created == "" {
		u.Created = models.Now()
	}
	const q = `REPLACE INTO users (id, email, password, roles, active, created)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		u.ID.String(), u.Email, u.Password, u.Roles, u.Active, u.Created)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUserByEmail returns one user by email, or ErrNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT * FROM users`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes one user by email.
func (s *Store) DeleteUser(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// DeleteUsers removes all users.
func (s *Store) DeleteUsers(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

// CountUsers returns the number of user rows.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(email) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
