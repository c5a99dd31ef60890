package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
	"github.com/unpatched/unpatched-server/pkg/store"
)

// Outputs written onto executions whose schedule or script vanished between
// materialization and dispatch.
const (
	skippedScheduleOutput = "Schedule not found, execution skipped"
	skippedScriptOutput   = "Script not found, execution skipped"
)

// scriptEnvelope is the payload of a `script:` frame, in both directions:
// outbound it carries the script to run, inbound the agent returns it with
// script_content replaced by the captured output.
type scriptEnvelope struct {
	ID     uuid.UUID      `json:"id"`
	Script *models.Script `json:"script"`
}

// dispatchLoop pings the agent and runs one dispatcher pass per tick. A
// failed ping means the transport is gone and ends the loop; everything
// else is retried next tick.
func (s *Session) dispatchLoop(ctx context.Context) {
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
			alias := s.Host().Alias
			if err := s.writer.WritePing(fmt.Sprintf("Agent %s you there?", alias)); err != nil {
				s.log.Info("ping failed, transport closed", "error", err)
				return
			}
			if err := s.DispatchPass(ctx); err != nil {
				s.log.Warn("dispatcher pass failed", "error", err)
			}
		}
	}
}

// DispatchPass sends every due pending execution of the current host to the
// agent. Each row is claimed with the sentinel response before the frame
// goes out, so a concurrent pass (same session or a duplicate one) can never
// dispatch the same execution twice. Returns an error only when the
// transport write failed; store-level trouble is logged per row.
func (s *Session) DispatchPass(ctx context.Context) error {
	host := s.Host()

	due, err := s.store.ListDueExecutions(ctx, host.ID, models.Now())
	if err != nil {
		s.log.Warn("failed to list due executions", "error", err)
		return nil
	}

	for i := range due {
		if err := s.dispatchExecution(ctx, &due[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) dispatchExecution(ctx context.Context, e *models.Execution) error {
	log := s.log.With("execution_id", e.ID)

	sched, err := s.store.GetSchedule(ctx, e.SchedID)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("schedule gone, skipping execution", "schedule_id", e.SchedID)
		s.completeSkipped(ctx, e.ID, skippedScheduleOutput)
		return nil
	}
	if err != nil {
		log.Warn("failed to resolve schedule", "error", err)
		return nil
	}

	script, err := s.store.GetScript(ctx, sched.ScriptID)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("script gone, skipping execution", "script_id", sched.ScriptID)
		s.completeSkipped(ctx, e.ID, skippedScriptOutput)
		return nil
	}
	if err != nil {
		log.Warn("failed to resolve script", "error", err)
		return nil
	}

	claimed, err := s.store.ClaimExecution(ctx, e.ID)
	if err != nil {
		log.Warn("failed to claim execution", "error", err)
		return nil
	}
	if !claimed {
		log.Debug("execution already claimed elsewhere")
		return nil
	}

	payload, err := json.Marshal(scriptEnvelope{ID: e.ID, Script: script})
	if err != nil {
		log.Error("failed to encode script frame", "error", err)
		return nil
	}
	if err := s.writer.WriteFrame(frameKindScript, string(payload)); err != nil {
		return fmt.Errorf("failed to send script frame: %w", err)
	}

	log.Info("execution dispatched", "script", script.Name, "script_version", script.Version)
	return nil
}

func (s *Session) completeSkipped(ctx context.Context, id uuid.UUID, output string) {
	if err := s.store.CompleteExecution(ctx, id, models.Now(), output); err != nil {
		s.log.Warn("failed to mark execution skipped", "execution_id", id, "error", err)
	}
}
