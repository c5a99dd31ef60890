package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpatched/unpatched-server/pkg/models"
	"github.com/unpatched/unpatched-server/pkg/store"
	testdb "github.com/unpatched/unpatched-server/test/database"
)

func newTestAuthorizer(t *testing.T) (*Authorizer, *store.Store) {
	t.Helper()
	client := testdb.NewTestClient(t)
	st := store.New(client.DB())
	return NewAuthorizer(st, NewTokenIssuer([]byte("test-secret"))), st
}

func seedUser(t *testing.T, st *store.Store, email, password string) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: hash,
		Roles:    models.StringList{"admin"},
		Active:   true,
	}
	require.NoError(t, st.SaveUser(context.Background(), u))
	return u
}

func TestAuthorizer_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return a verifiable token", func(t *testing.T) {
		a, st := newTestAuthorizer(t)
		seedUser(t, st, "ops@example.com", "hunter22222")

		token, err := a.Login(ctx, "127.0.0.1", "ops@example.com", "hunter22222")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := a.issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "ops@example.com", claims.Subject)
	})

	t.Run("missing credentials", func(t *testing.T) {
		a, _ := newTestAuthorizer(t)

		_, err := a.Login(ctx, "127.0.0.1", "", "secret")
		assert.ErrorIs(t, err, ErrMissingCredentials)

		_, err = a.Login(ctx, "127.0.0.1", "ops@example.com", "")
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("client id must be an email", func(t *testing.T) {
		a, _ := newTestAuthorizer(t)

		_, err := a.Login(ctx, "127.0.0.1", "not-an-email", "secret")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("unknown user counts as wrong credentials and is tracked", func(t *testing.T) {
		a, st := newTestAuthorizer(t)

		_, err := a.Login(ctx, "127.0.0.1", "ghost@example.com", "secret")
		assert.ErrorIs(t, err, ErrWrongCredentials)

		item, err := st.GetBlacklistItemByIP(ctx, "127.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 1, item.Tries)
		assert.Nil(t, item.BlockedUntil)
	})

	t.Run("five failures block the ip, even for correct credentials", func(t *testing.T) {
		a, st := newTestAuthorizer(t)
		seedUser(t, st, "ops@example.com", "correct-horse")

		for i := 0; i < 5; i++ {
			_, err := a.Login(ctx, "127.0.0.1", "ops@example.com", "wrong-password")
			assert.ErrorIs(t, err, ErrWrongCredentials)
		}

		item, err := st.GetBlacklistItemByIP(ctx, "127.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 5, item.Tries)
		require.NotNil(t, item.Blocked)
		require.NotNil(t, item.BlockedUntil)
		until, err := models.ParseTime(*item.BlockedUntil)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), until, 10*time.Second)

		// Blocked means blocked: the right password changes nothing.
		_, err = a.Login(ctx, "127.0.0.1", "ops@example.com", "correct-horse")
		assert.ErrorIs(t, err, ErrWrongCredentials)

		// Clearing the row unblocks the ip.
		require.NoError(t, st.DeleteBlacklistItem(ctx, item.ID))
		token, err := a.Login(ctx, "127.0.0.1", "ops@example.com", "correct-horse")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("an expired block starts the ip over", func(t *testing.T) {
		a, st := newTestAuthorizer(t)
		seedUser(t, st, "ops@example.com", "correct-horse")

		past := models.FormatTime(time.Now().Add(-time.Minute))
		expired := &models.BlacklistItem{
			ID:           uuid.New(),
			IP:           "127.0.0.1",
			Tries:        5,
			Blocked:      &past,
			BlockedUntil: &past,
		}
		require.NoError(t, st.SaveBlacklistItem(ctx, expired))

		token, err := a.Login(ctx, "127.0.0.1", "ops@example.com", "correct-horse")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		// The stale row is gone, not merely ignored.
		_, err = st.GetBlacklistItemByIP(ctx, "127.0.0.1")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("failures from one ip do not block another", func(t *testing.T) {
		a, st := newTestAuthorizer(t)
		seedUser(t, st, "ops@example.com", "correct-horse")

		for i := 0; i < 5; i++ {
			_, err := a.Login(ctx, "203.0.113.5", "ops@example.com", "wrong")
			assert.ErrorIs(t, err, ErrWrongCredentials)
		}

		token, err := a.Login(ctx, "127.0.0.1", "ops@example.com", "correct-horse")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})
}
