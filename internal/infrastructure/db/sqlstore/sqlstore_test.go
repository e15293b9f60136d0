package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB returns a migrated in-memory SQLite database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(context.Background(), db, DriverSQLite, zerolog.Nop()))
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestMigrate_CreatesTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"users", "task"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// Re-running is a no-op.
	require.NoError(t, Migrate(context.Background(), db, DriverSQLite, zerolog.Nop()))
}

func TestMigrate_UnsupportedDriver(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, Migrate(context.Background(), db, "oracle", zerolog.Nop()))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", sqliteDSN(":memory:"))
	assert.Equal(t, "file:x.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", sqliteDSN("file:x.db?mode=rwc"))
	assert.Equal(t, "x.db?_pragma=journal_mode(WAL)", sqliteDSN("x.db?_pragma=journal_mode(WAL)"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))

	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO users (email, password_digest) VALUES ($1, $2)`, "a@test.com", "d")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (email, password_digest) VALUES ($1, $2)`, "a@test.com", "d")
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

func TestTimestampScan(t *testing.T) {
	var ts timestamp
	require.NoError(t, ts.Scan("2024-03-01 10:20:30"))
	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, 30, ts.Second())

	require.NoError(t, ts.Scan([]byte("2024-03-01T10:20:30.5+02:00")))
	assert.Equal(t, 8, ts.Hour())

	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}
