package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpatched/unpatched-server/pkg/models"
)

func TestStore_Schedules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	script := seedScript(t, s, "uptime")

	t.Run("cron schedule targeting attributes round-trips", func(t *testing.T) {
		sched := seedCronSchedule(t, s, script.ID, models.StringList{"attr1", "attr2"})

		got, err := s.GetSchedule(ctx, sched.ID)
		require.NoError(t, err)
		assert.Equal(t, script.ID, got.ScriptID)
		assert.Equal(t, models.StringList{"attr1", "attr2"}, got.Target.Attributes)
		assert.Nil(t, got.Target.HostID)
		require.NotNil(t, got.Timer.Cron)
		assert.Equal(t, "* * * * *", *got.Timer.Cron)
		assert.Nil(t, got.Timer.Timestamp)
	})

	t.Run("one-shot schedule targeting a host round-trips", func(t *testing.T) {
		host := seedHost(t, s, "target", nil)
		ts := "2026-09-01T10:00:00.000Z"
		sched := &models.Schedule{
			ID:       uuid.New(),
			ScriptID: script.ID,
			Target:   models.Target{HostID: &host.ID},
			Timer:    models.Timer{Timestamp: &ts},
			Active:   true,
		}
		require.NoError(t, s.SaveSchedule(ctx, sched))

		got, err := s.GetSchedule(ctx, sched.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Target.Attributes)
		require.NotNil(t, got.Target.HostID)
		assert.Equal(t, host.ID, *got.Target.HostID)
		assert.Nil(t, got.Timer.Cron)
		require.NotNil(t, got.Timer.Timestamp)
		assert.Equal(t, ts, *got.Timer.Timestamp)
	})

	t.Run("rejects schedule with both target members", func(t *testing.T) {
		host := seedHost(t, s, "extra", nil)
		cron := "* * * * *"
		sched := &models.Schedule{
			ID:       uuid.New(),
			ScriptID: script.ID,
			Target:   models.Target{Attributes: models.StringList{"a"}, HostID: &host.ID},
			Timer:    models.Timer{Cron: &cron},
			Active:   true,
		}
		err := s.SaveSchedule(ctx, sched)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one")
	})

	t.Run("rejects schedule with no timer member", func(t *testing.T) {
		sched := &models.Schedule{
			ID:       uuid.New(),
			ScriptID: script.ID,
			Target:   models.Target{Attributes: models.StringList{"a"}},
			Active:   true,
		}
		err := s.SaveSchedule(ctx, sched)
		require.Error(t, err)
	})

	t.Run("rejects schedule referencing a missing script", func(t *testing.T) {
		cron := "* * * * *"
		sched := &models.Schedule{
			ID:       uuid.New(),
			ScriptID: uuid.New(),
			Target:   models.Target{Attributes: models.StringList{"a"}},
			Timer:    models.Timer{Cron: &cron},
			Active:   true,
		}
		err := s.SaveSchedule(ctx, sched)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConstraint)
	})

	t.Run("active filter and deactivate", func(t *testing.T) {
		sched := seedCronSchedule(t, s, script.ID, models.StringList{"only-active"})

		active, err := s.ListActiveSchedules(ctx)
		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(active))
		for i := range active {
			ids = append(ids, active[i].ID)
		}
		assert.Contains(t, ids, sched.ID)

		require.NoError(t, s.DeactivateSchedule(ctx, sched.ID))

		active, err = s.ListActiveSchedules(ctx)
		require.NoError(t, err)
		for i := range active {
			assert.NotEqual(t, sched.ID, active[i].ID)
		}

		got, err := s.GetSchedule(ctx, sched.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("deleting the script cascades to its schedules", func(t *testing.T) {
		doomed := seedScript(t, s, "doomed")
		sched := seedCronSchedule(t, s, doomed.ID, models.StringList{"x"})

		require.NoError(t, s.DeleteScript(ctx, doomed.ID))

		_, err := s.GetSchedule(ctx, sched.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
