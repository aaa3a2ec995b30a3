package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewAndMigrate_App(t *testing.T) {
	db := newTestDB(t, "app", ProfileStandard)
	require.NoError(t, db.Migrate())

	// Migrations are idempotent
	require.NoError(t, db.Migrate())

	tables := []string{"users", "transactions", "holdings", "recommendations"}
	for _, table := range tables {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestNewAndMigrate_Catalog(t *testing.T) {
	db := newTestDB(t, "catalog", ProfileCache)
	require.NoError(t, db.Migrate())

	var name string
	err := db.Conn().QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'investment_options'").Scan(&name)
	require.NoError(t, err)
}

func TestMigrate_UnknownNameIsNoOp(t *testing.T) {
	db := newTestDB(t, "scratch", ProfileStandard)
	assert.NoError(t, db.Migrate())
}

func TestCheckpoint(t *testing.T) {
	db := newTestDB(t, "app", ProfileStandard)
	require.NoError(t, db.Migrate())

	_, _, err := db.Checkpoint()
	assert.NoError(t, err)
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "app", ProfileStandard)
	require.NoError(t, db.Migrate())

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO users (id, name, email, password_hash, created_at)
			VALUES ('u1', 'Test', 'a@b.com', 'hash', '2026-01-01T00:00:00Z')`)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := newTestDB(t, "app", ProfileStandard)
	require.NoError(t, db.Migrate())

	sentinel := errors.New("boom")
	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO users (id, name, email, password_hash, created_at)
			VALUES ('u1', 'Test', 'a@b.com', 'hash', '2026-01-01T00:00:00Z')`); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 0, count)
}
