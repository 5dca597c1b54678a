package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"reminders", "deliveries"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
	for _, idx := range []string{"idx_reminders_due", "idx_reminders_owner", "idx_deliveries_reminder"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_KindMaskConstraints(t *testing.T) {
	db := openTestDB(t)
	insert := `INSERT INTO reminders (owner_id, kind, fire_time, days_mask, created_at)
		VALUES ('o', ?, '09:00', ?, '2026-01-01T00:00:00Z')`

	_, err := db.Exec(insert, "one_shot", 0)
	assert.NoError(t, err)
	_, err = db.Exec(insert, "recurring", 127)
	assert.NoError(t, err)

	_, err = db.Exec(insert, "one_shot", 3)
	assert.Error(t, err, "one-shot reminders carry no days")
	_, err = db.Exec(insert, "recurring", 0)
	assert.Error(t, err, "recurring reminders need days")
	_, err = db.Exec(insert, "recurring", 128)
	assert.Error(t, err)
	_, err = db.Exec(insert, "weekly", 1)
	assert.Error(t, err)
}
