package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh database reaches expected version", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		var version int
		err := store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
		require.NoError(t, err)
		assert.Equal(t, ExpectedSchemaVersion, version)
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		// Already migrated by the helper; a second run is a no-op.
		require.NoError(t, store.Migrate(ctx))

		var version int
		err := store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
		require.NoError(t, err)
		assert.Equal(t, ExpectedSchemaVersion, version)
	})

	t.Run("all tables exist after migration", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		for _, table := range []string{"accounts", "categories", "transactions", "budgets", "budget_categories", "recurring_transactions"} {
			var name string
			err := store.db.QueryRowContext(ctx,
				`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
			require.NoError(t, err, "table %s should exist", table)
		}
	})

	t.Run("reopening a migrated database works", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "reopen.db")

		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Migrate(ctx))
		require.NoError(t, store.Close())

		store, err = NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		require.NoError(t, store.Migrate(ctx))
	})
}
