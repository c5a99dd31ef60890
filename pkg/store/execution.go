package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// SaveExecution inserts or replaces an execution row. Created is stamped
// here when the caller leaves it empty.
func (s *Store) SaveExecution(ctx context.Context, e *models.Execution) error {
	if e.Created == "" {
		e.Created = models.Now()
	}
	const q = `REPLACE INTO executions (id, request, response, host_id, sched_id, created, output)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		e.ID.String(), e.Request, e.Response, e.HostID.String(), e.SchedID.String(), e.Created, e.Output)
	if isConstraintViolation(err) {
		return fmt.Errorf("failed to save execution: %w: %v", ErrConstraint, err)
	}
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}
	return nil
}

// GetExecution returns one execution by id, or ErrNotFound.
func (s *Store) GetExecution(ctx context.Context, id uuid.UUID) (*models.Execution, error) {
	var e models.Execution
	err := s.db.GetContext(ctx, &e, `SELECT * FROM executions WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	return &e, nil
}

// ListExecutions returns all executions.
func (s *Store) ListExecutions(ctx context.Context) ([]models.Execution, error) {
	executions := []models.Execution{}
	if err := s.db.SelectContext(ctx, &executions, `SELECT * FROM executions`); err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	return executions, nil
}

// ListFutureExecutions returns the not-yet-due executions of one schedule on
// one host, i.e. rows with request strictly after the given instant. The
// materializer uses this to decide whether a trigger is already covered.
func (s *Store) ListFutureExecutions(ctx context.Context, hostID, schedID uuid.UUID, after string) ([]models.Execution, error) {
	executions := []models.Execution{}
	const q = `SELECT * FROM executions WHERE host_id = ? AND sched_id = ? AND request > ?`
	if err := s.db.SelectContext(ctx, &executions, q, hostID.String(), schedID.String(), after); err != nil {
		return nil, fmt.Errorf("failed to list future executions: %w", err)
	}
	return executions, nil
}

// ListDueExecutions returns the pending executions of one host whose request
// time has passed: request strictly before now and no response yet.
func (s *Store) ListDueExecutions(ctx context.Context, hostID uuid.UUID, now string) ([]models.Execution, error) {
	executions := []models.Execution{}
	const q = `SELECT * FROM executions WHERE host_id = ? AND request < ? AND response IS NULL`
	if err := s.db.SelectContext(ctx, &executions, q, hostID.String(), now); err != nil {
		return nil, fmt.Errorf("failed to list due executions: %w", err)
	}
	return executions, nil
}

// ClaimExecution transitions one execution from pending to claimed by
// writing the sentinel response. The response IS NULL guard makes the
// update the serialization point: exactly one dispatcher pass wins, any
// concurrent pass sees claimed==false and skips the row.
func (s *Store) ClaimExecution(ctx context.Context, id uuid.UUID) (claimed bool, err error) {
	const q = `UPDATE executions SET response = ? WHERE id = ? AND response IS NULL`
	res, err := s.db.ExecContext(ctx, q, models.ClaimSentinel, id.String())
	if err != nil {
		return false, fmt.Errorf("failed to claim execution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	return n == 1, nil
}

// CompleteExecution finalizes an execution with its completion time and the
// captured output.
func (s *Store) CompleteExecution(ctx context.Context, id uuid.UUID, response, output string) error {
	const q = `UPDATE executions SET response = ?, output = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, response, output, id.String()); err != nil {
		return fmt.Errorf("failed to complete execution: %w", err)
	}
	return nil
}

// DeleteExecution removes one execution.
func (s *Store) DeleteExecution(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM executions WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete execution: %w", err)
	}
	return nil
}

// DeleteExecutions removes all executions.
func (s *Store) DeleteExecutions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM executions`); err != nil {
		return fmt.Errorf("failed to delete executions: %w", err)
	}
	return nil
}

// CountExecutions returns the number of execution rows.
func (s *Store) CountExecutions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(id) FROM executions`); err != nil {
		return 0, fmt.Errorf("failed to count executions: %w", err)
	}
	return n, nil
}
