// Package database provides the shared SQLite test fixture.
package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unpatched/unpatched-server/pkg/database"
)

// NewTestClient opens a throwaway SQLite database in the test's temp
// directory and runs all migrations against it. The file and the
// connection are cleaned up when the test ends.
func NewTestClient(t *testing.T) *database.Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "unpatched-test.sqlite")
	client, err := database.NewClient(context.Background(), path)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, client.Close())
	})

	return client
}
