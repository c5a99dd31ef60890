package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
)

// SeedSampleData loads sample scripts and schedules into empty tables so a
// fresh install has something to look at. Tables that already hold rows are
// left alone. A failed insert is logged, not returned; the server runs fine
// with empty tables.
func (s *Store) SeedSampleData(ctx context.Context) error {
	scripts, err := s.CountScripts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count scripts: %w", err)
	}
	if scripts == 0 {
		if err := s.seedScripts(ctx); err != nil {
			slog.Warn("could not load sample scripts, starting with an empty script table", "error", err)
		} else {
			slog.Info("sample scripts loaded")
		}
	} else {
		slog.Debug("script table has scripts, samples not loaded")
	}

	schedules, err := s.CountSchedules(ctx)
	if err != nil {
		return fmt.Errorf("failed to count schedules: %w", err)
	}
	if schedules == 0 {
		if err := s.seedSchedules(ctx); err != nil {
			slog.Warn("could not load sample schedules, starting with an empty schedule table", "error", err)
		} else {
			slog.Info("sample schedules loaded")
		}
	} else {
		slog.Debug("schedule table has schedules, samples not loaded")
	}
	return nil
}

func (s *Store) seedScripts(ctx context.Context) error {
	samples := []models.Script{
		{
			ID:            uuid.New(),
			Name:          "uptime",
			Version:       "0.0.1",
			OutputRegex:   ".*",
			Labels:        models.StringList{"sample", "sample2"},
			TimeoutInS:    5,
			ScriptContent: "uptime -p",
		},
		{
			ID:            uuid.New(),
			Name:          "os_version",
			Version:       "0.0.1",
			OutputRegex:   ".*",
			Labels:        models.StringList{"sample", "sample2"},
			TimeoutInS:    5,
			ScriptContent: "cat /etc/os-release",
		},
	}
	for i := range samples {
		if err := s.SaveScript(ctx, &samples[i]); err != nil {
			return err
		}
	}
	return nil
}

// seedSchedules binds the sample scripts, found by name, to a sample target.
func (s *Store) seedSchedules(ctx context.Context) error {
	cron := "* * * * *"
	for _, name := range []string{"uptime", "os_version"} {
		scriptID, err := s.GetScriptIDByName(ctx, name)
		if err != nil {
			return fmt.Errorf("sample script %q: %w", name, err)
		}
		sched := models.Schedule{
			ID:       uuid.New(),
			ScriptID: scriptID,
			Target:   models.Target{Attributes: models.StringList{"attr1", "attr2"}},
			Timer:    models.Timer{Cron: &cron},
			Active:   true,
		}
		if err := s.SaveSchedule(ctx, &sched); err != nil {
			return err
		}
	}
	return nil
}
