package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// SaveScript inserts or replaces a script row.
func (s *Store) SaveScript(ctx context.Context, sc *models.Script) error {
	const q = `REPLACE INTO scripts (id, name, version, output_regex, labels, timeout_in_s, script_content)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		sc.ID.String(), sc.Name, sc.Version, sc.OutputRegex, sc.Labels, sc.TimeoutInS, sc.ScriptContent)
	if err != nil {
		return fmt.Errorf("failed to save script: %w", err)
	}
	return nil
}

// GetScript returns one script by id, or ErrNotFound.
func (s *Store) GetScript(ctx context.Context, id uuid.UUID) (*models.Script, error) {
	var sc models.Script
	err := s.db.GetContext(ctx, &sc, `SELECT * FROM scripts WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get script: %w", err)
	}
	return &sc, nil
}

// GetScriptIDByName returns the id of the first script with the given name,
// or ErrNotFound. Used by the sample-data seeder.
func (s *Store) GetScriptIDByName(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.GetContext(ctx, &id, `SELECT id FROM scripts WHERE name = ? LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get script by name: %w", err)
	}
	return id, nil
}

// ListScripts returns all scripts.
func (s *Store) ListScripts(ctx context.Context) ([]models.Script, error) {
	scripts := []models.Script{}
	if err := s.db.SelectContext(ctx, &scripts, `SELECT * FROM scripts`); err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	return scripts, nil
}

// DeleteScript removes one script; its schedules cascade.
func (s *Store) DeleteScript(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scripts WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete script: %w", err)
	}
	return nil
}

// DeleteScripts removes all scripts.
func (s *Store) DeleteScripts(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scripts`); err != nil {
		return fmt.Errorf("failed to delete scripts: %w", err)
	}
	return nil
}

// CountScripts returns the number of script rows.
func (s *Store) CountScripts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(id) FROM scripts`); err != nil {
		return 0, fmt.Errorf("failed to count scripts: %w", err)
	}
	return n, nil
}
