package testutil

import (
	"testing"

	"task-tracker-api/internal/config"
	"task-tracker-api/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// NewStore creates an in-memory SQLite store and runs migrations.
func NewStore(t testing.TB) *database.Store {
	t.Helper()
	store, err := database.Open(config.DatabaseConfig{
		Driver:   database.DriverSQLite,
		DSN:      ":memory:",
		LogLevel: "silent",
	}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}
