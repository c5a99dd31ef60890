package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/cron"
	"github.com/unpatched/unpatched-server/pkg/models"
)

// materializeLoop runs one materializer pass per tick. Store failures are
// logged and retried on the next tick; they never end the session.
func (s *Session) materializeLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.MaterializePass(ctx); err != nil {
				s.log.Warn("materializer pass failed", "error", err)
			}
		}
	}
}

// MaterializePass turns every active schedule matching the current host into
// at most one upcoming execution row. A schedule is skipped when a future
// execution at or before its next trigger already exists, so re-running a
// pass never duplicates work.
func (s *Session) MaterializePass(ctx context.Context) error {
	host := s.Host()

	schedules, err := s.store.ListActiveSchedules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active schedules: %w", err)
	}

	now := time.Now().UTC()
	for i := range schedules {
		sched := &schedules[i]
		if !sched.Matches(&host) {
			continue
		}
		if err := s.materializeSchedule(ctx, &host, sched, now); err != nil {
			s.log.Warn("failed to materialize schedule", "schedule_id", sched.ID, "error", err)
		}
	}
	return nil
}

func (s *Session) materializeSchedule(ctx context.Context, host *models.Host, sched *models.Schedule, now time.Time) error {
	var trigger string
	switch {
	case sched.Timer.Cron != nil:
		parsed, err := cron.Parse(cron.Normalize(*sched.Timer.Cron, s.sevenPartCron))
		if err != nil {
			s.log.Warn("skipping schedule with unparseable cron expression",
				"schedule_id", sched.ID, "cron", *sched.Timer.Cron, "error", err)
			return nil
		}
		next, ok := parsed.Next(now)
		if !ok {
			s.log.Warn("skipping schedule whose cron expression admits no further trigger",
				"schedule_id", sched.ID, "cron", *sched.Timer.Cron)
			return nil
		}
		trigger = models.FormatTime(next)

	case sched.Timer.Timestamp != nil:
		// One-shot: deactivating here makes the schedule materialize at
		// most once, even when the timestamp is already in the past.
		trigger = *sched.Timer.Timestamp
		if err := s.store.DeactivateSchedule(ctx, sched.ID); err != nil {
			return fmt.Errorf("failed to deactivate one-shot schedule: %w", err)
		}
	}

	future, err := s.store.ListFutureExecutions(ctx, host.ID, sched.ID, models.FormatTime(now))
	if err != nil {
		return fmt.Errorf("failed to list future executions: %w", err)
	}
	for i := range future {
		if future[i].Request <= trigger {
			// A sooner or equal execution already covers this trigger.
			return nil
		}
	}

	exec := &models.Execution{
		ID:      uuid.New(),
		Request: trigger,
		HostID:  host.ID,
		SchedID: sched.ID,
	}
	if err := s.store.SaveExecution(ctx, exec); err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}
	s.log.Info("execution materialized",
		"execution_id", exec.ID, "schedule_id", sched.ID, "request", trigger)
	return nil
}
