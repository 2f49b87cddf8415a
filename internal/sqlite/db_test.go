package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"items",
		"members",
		"snapshots",
		"activity_log",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestMigrationsIdempotent verifies the schema can be applied on every start
func TestMigrationsIdempotent(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestSnapshotsTable verifies the snapshot table constraints
func TestSnapshotsTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	// Snapshot without an indexed member is rejected
	_, err := db.ExecContext(ctx,
		`INSERT INTO snapshots (id, item_id, member_name, time_local, time_utc, stocks, source)
		 VALUES (?, ?, ?, ?, `+nowExpr+`, ?, ?)`,
		"s1", "1001", "CC", "2026-10-15 09:30:00", 5, "kmstation")
	require.Error(t, err, "should fail without member row")

	_, err = db.ExecContext(ctx, `INSERT INTO items (item_id) VALUES (?)`, "1001")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO members (item_id, member_name) VALUES (?, ?)`, "1001", "CC")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO snapshots (id, item_id, member_name, time_local, time_utc, stocks, source)
		 VALUES (?, ?, ?, ?, `+nowExpr+`, ?, ?)`,
		"s1", "1001", "CC", "2026-10-15 09:30:00", 5, "kmstation")
	require.NoError(t, err)

	var timeUTC string
	err = db.QueryRowContext(ctx, `SELECT time_utc FROM snapshots WHERE id = ?`, "s1").Scan(&timeUTC)
	require.NoError(t, err)
	_, err = parseTimestamp(timeUTC)
	require.NoError(t, err)
}
