package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpatched/unpatched-server/pkg/models"
)

func TestSession_MaterializePass_Cron(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	host := seedHost(t, st, models.StringList{"linux"})
	script := seedScript(t, st, "uptime -p")
	seedCronSchedule(t, st, script.ID, models.StringList{"linux"}, "0 0 * * *")

	sess, _ := newTestSession(t, st, host)
	require.NoError(t, sess.MaterializePass(ctx))

	executions, err := st.ListExecutions(ctx)
	require.NoError(t, err)
	require.Len(t, executions, 1)

	// Daily at midnight means the next UTC midnight.
	nextMidnight := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	assert.Equal(t, models.FormatTime(nextMidnight), executions[0].Request)
	assert.Equal(t, host.ID, executions[0].HostID)
	assert.True(t, executions[0].IsPending())

	// Re-running the pass is idempotent: the trigger is already covered.
	require.NoError(t, sess.MaterializePass(ctx))
	executions, err = st.ListExecutions(ctx)
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}

func TestSession_MaterializePass_OneShot(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	host := seedHost(t, st, models.StringList{"linux"})
	script := seedScript(t, st, "uptime -p")

	ts := models.FormatTime(time.Now().UTC().Add(5 * time.Second))
	sched := &models.Schedule{
		ID:       uuid.New(),
		ScriptID: script.ID,
		Target:   models.Target{Attributes: models.StringList{"linux"}},
		Timer:    models.Timer{Timestamp: &ts},
		Active:   true,
	}
	require.NoError(t, st.SaveSchedule(ctx, sched))

	sess, _ := newTestSession(t, st, host)
	require.NoError(t, sess.MaterializePass(ctx))

	executions, err := st.ListExecutions(ctx)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, ts, executions[0].Request)

	// The one-shot schedule deactivated itself by materializing.
	got, err := st.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	// A second pass sees no active schedule and adds nothing.
	require.NoError(t, sess.MaterializePass(ctx))
	executions, err = st.ListExecutions(ctx)
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}

func TestSession_MaterializePass_Matching(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	script := seedScript(t, st, "uptime -p")

	t.Run("attribute matching is exact multiset", func(t *testing.T) {
		host := seedHost(t, st, models.StringList{"linux", "web"})
		seedCronSchedule(t, st, script.ID, models.StringList{"linux"}, "* * * * *")

		sess, _ := newTestSession(t, st, host)
		require.NoError(t, sess.MaterializePass(ctx))

		executions, err := st.ListExecutions(ctx)
		require.NoError(t, err)
		assert.Empty(t, executions, "subset match must not materialize")
	})

	t.Run("attribute order does not matter", func(t *testing.T) {
		host := seedHost(t, st, models.StringList{"web", "linux"})
		seedCronSchedule(t, st, script.ID, models.StringList{"linux", "web"}, "* * * * *")

		sess, _ := newTestSession(t, st, host)
		require.NoError(t, sess.MaterializePass(ctx))

		executions, err := st.ListExecutions(ctx)
		require.NoError(t, err)
		assert.Len(t, executions, 1)
	})

	t.Run("target by host id", func(t *testing.T) {
		host := seedHost(t, st, nil)
		other := seedHost(t, st, nil)
		cron := "* * * * *"
		sched := &models.Schedule{
			ID:       uuid.New(),
			ScriptID: script.ID,
			Target:   models.Target{HostID: &host.ID},
			Timer:    models.Timer{Cron: &cron},
			Active:   true,
		}
		require.NoError(t, st.SaveSchedule(ctx, sched))

		sess, _ := newTestSession(t, st, other)
		require.NoError(t, sess.MaterializePass(ctx))
		future, err := st.ListFutureExecutions(ctx, other.ID, sched.ID, models.Now())
		require.NoError(t, err)
		assert.Empty(t, future)

		sess, _ = newTestSession(t, st, host)
		require.NoError(t, sess.MaterializePass(ctx))
		future, err = st.ListFutureExecutions(ctx, host.ID, sched.ID, models.Now())
		require.NoError(t, err)
		assert.Len(t, future, 1)
	})
}

func TestSession_MaterializePass_BadCron(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	host := seedHost(t, st, models.StringList{"linux"})
	script := seedScript(t, st, "uptime -p")
	seedCronSchedule(t, st, script.ID, models.StringList{"linux"}, "not a cron expr")

	sess, _ := newTestSession(t, st, host)
	// A broken expression is logged and skipped, never fatal.
	require.NoError(t, sess.MaterializePass(ctx))

	executions, err := st.ListExecutions(ctx)
	require.NoError(t, err)
	assert.Empty(t, executions)
}
