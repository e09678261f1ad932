package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestMigrate_Idempotent(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, Migrate(d))
	require.NoError(t, Migrate(d))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	d := openTestDB(t)

	for _, table := range []string{"homilies", "contexts", "user_settings"} {
		var name string
		err := d.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	d := openTestDB(t)

	for _, idx := range []string{"idx_homilies_owner_created", "idx_homilies_owner_status", "idx_contexts_owner"} {
		var name string
		err := d.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_StatusConstraint(t *testing.T) {
	d := openTestDB(t)

	_, err := d.Exec(`INSERT INTO homilies (id, owner_id, status, created_at, updated_at) VALUES ('h', 'o', 'Published', 'x', 'x')`)
	assert.Error(t, err)
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	d := openTestDB(t)

	var fk int
	require.NoError(t, d.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_FileDatabaseUsesWAL(t *testing.T) {
	d, err := OpenDB(t.TempDir() + "/nested/homily.db")
	require.NoError(t, err)
	defer d.Close()

	var mode string
	require.NoError(t, d.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestDialect_Rebind(t *testing.T) {
	q := `SELECT * FROM homilies WHERE owner_id = ? AND title <> '?' AND id = ?`
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, `SELECT * FROM homilies WHERE owner_id = $1 AND title <> '?' AND id = $2`, Postgres.Rebind(q))
}

func TestParseDialect(t *testing.T) {
	tests := map[string]Dialect{"": SQLite, "SQLite": SQLite, "postgresql": Postgres, "pgx": Postgres}
	for in, want := range tests {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseDialect("mysql")
	assert.Error(t, err)
}
