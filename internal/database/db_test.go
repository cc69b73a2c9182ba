package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileDatabaseMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bookings.db")

	db, err := New(Config{Path: path, Name: "bookings"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	// Migrating twice is harmless.
	require.NoError(t, db.Migrate())

	var count int
	err = db.Conn().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('bookings', 'import_batches')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageSize, int64(0))
	assert.NoError(t, db.QuickCheck(context.Background()))
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db, err := New(Config{Path: "file::memory:", Name: "scratch"})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Migrate())
}

func TestWithTransaction(t *testing.T) {
	db, err := New(Config{Path: "file::memory:", Name: "scratch"})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Conn().Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO items (id) VALUES (1)`)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countItems(t, db))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
			if _, err := tx.Exec(`INSERT INTO items (id) VALUES (2)`); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, countItems(t, db))
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		err := WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
			_, _ = tx.Exec(`INSERT INTO items (id) VALUES (3)`)
			panic("unexpected")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, countItems(t, db))
	})

	t.Run("nil connection", func(t *testing.T) {
		assert.Error(t, WithTransaction(ctx, nil, func(*sql.Tx) error { return nil }))
	})
}

func countItems(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}
