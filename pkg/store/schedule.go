package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// scheduleRow is the flattened table shape of a schedule: the target and
// timer unions spread over parallel nullable columns, exactly one of each
// pair non-null.
type scheduleRow struct {
	ID               uuid.UUID          `db:"id"`
	ScriptID         uuid.UUID          `db:"script_id"`
	TargetAttributes *models.StringList `db:"target_attributes"`
	TargetHostID     *string            `db:"target_host_id"`
	TimerCron        *string            `db:"timer_cron"`
	TimerTS          *string            `db:"timer_ts"`
	Active           bool               `db:"active"`
}

func (r *scheduleRow) toModel() (*models.Schedule, error) {
	sched := models.Schedule{
		ID:       r.ID,
		ScriptID: r.ScriptID,
		Active:   r.Active,
	}
	if r.TargetAttributes != nil {
		sched.Target.Attributes = *r.TargetAttributes
		if sched.Target.Attributes == nil {
			sched.Target.Attributes = models.StringList{}
		}
	}
	if r.TargetHostID != nil {
		hostID, err := uuid.Parse(*r.TargetHostID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schedule target host id: %w", err)
		}
		sched.Target.HostID = &hostID
	}
	sched.Timer.Cron = r.TimerCron
	sched.Timer.Timestamp = r.TimerTS
	if err := sched.Validate(); err != nil {
		return nil, fmt.Errorf("schedule row %s violates union rule: %w", r.ID, err)
	}
	return &sched, nil
}

// SaveSchedule inserts or replaces a schedule row. The union rule (exactly
// one target member, exactly one timer member) is enforced here, not only
// in the value type.
func (s *Store) SaveSchedule(ctx context.Context, sched *models.Schedule) error {
	if err := sched.Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	var targetAttrs *models.StringList
	if sched.Target.Attributes != nil {
		targetAttrs = &sched.Target.Attributes
	}
	var targetHost *string
	if sched.Target.HostID != nil {
		id := sched.Target.HostID.String()
		targetHost = &id
	}
	const q = `REPLACE INTO schedules (id, script_id, target_attributes, target_host_id, timer_cron, timer_ts, active)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		sched.ID.String(), sched.ScriptID.String(),
		targetAttrs, targetHost, sched.Timer.Cron, sched.Timer.Timestamp, sched.Active)
	if isConstraintViolation(err) {
		return fmt.Errorf("failed to save schedule: %w: %v", ErrConstraint, err)
	}
	if err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

// GetSchedule returns one schedule by id, or ErrNotFound.
func (s *Store) GetSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	var row scheduleRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM schedules WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return row.toModel()
}

// ListSchedules returns all schedules.
func (s *Store) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	return s.selectSchedules(ctx, `SELECT * FROM schedules`)
}

// ListActiveSchedules returns the schedules the materializer considers.
func (s *Store) ListActiveSchedules(ctx context.Context) ([]models.Schedule, error) {
	return s.selectSchedules(ctx, `SELECT * FROM schedules WHERE active = 1`)
}

func (s *Store) selectSchedules(ctx context.Context, query string, args ...any) ([]models.Schedule, error) {
	rows := []scheduleRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	schedules := make([]models.Schedule, 0, len(rows))
	for i := range rows {
		sched, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *sched)
	}
	return schedules, nil
}

// DeactivateSchedule flips active to false. One-shot timers go through here
// so they materialize exactly once.
func (s *Store) DeactivateSchedule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE schedules SET active = 0 WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to deactivate schedule: %w", err)
	}
	return nil
}

// DeleteSchedule removes one schedule; its executions cascade.
func (s *Store) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

// DeleteSchedules removes all schedules.
func (s *Store) DeleteSchedules(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM schedules`); err != nil {
		return fmt.Errorf("failed to delete schedules: %w", err)
	}
	return nil
}

// CountSchedules returns the number of schedule rows.
func (s *Store) CountSchedules(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(id) FROM schedules`); err != nil {
		return 0, fmt.Errorf("failed to count schedules: %w", err)
	}
	return n, nil
}
