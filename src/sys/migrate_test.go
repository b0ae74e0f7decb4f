package sys

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func countMigrations(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	return n
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestApplyMigrationsRecordsApplied(t *testing.T) {
	db := openInMemoryDB(t)

	fsys := fstest.MapFS{
		"0001_items.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE items;"),
		},
	}

	require.NoError(t, ApplyMigrations(context.Background(), db, fsys))
	assert.EqualValues(t, 1, countMigrations(t, db))
	assert.True(t, tableExists(t, db, "items"))
}

func TestApplyMigrationsRunsInFilenameOrder(t *testing.T) {
	db := openInMemoryDB(t)

	// 0002 depends on the table 0001 creates; fstest.MapFS iterates unsorted,
	// so this only passes if the runner sorts.
	fsys := fstest.MapFS{
		"0002_add_column.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nALTER TABLE items ADD COLUMN name TEXT;"),
		},
		"0001_items.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);"),
		},
	}

	require.NoError(t, ApplyMigrations(context.Background(), db, fsys))
	assert.EqualValues(t, 2, countMigrations(t, db))

	_, err := db.Exec("INSERT INTO items (id, name) VALUES ('a', 'b')")
	assert.NoError(t, err)
}

func TestApplyMigrationsSkipsAlreadyApplied(t *testing.T) {
	db := openInMemoryDB(t)

	fsys := fstest.MapFS{
		"0001_items.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);"),
		},
	}

	require.NoError(t, ApplyMigrations(context.Background(), db, fsys))
	require.NoError(t, ApplyMigrations(context.Background(), db, fsys))
	assert.EqualValues(t, 1, countMigrations(t, db))
}

func TestApplyMigrationsToleratesOverlappingDDL(t *testing.T) {
	db := openInMemoryDB(t)

	// Two historical scripts both create the same table; the second must not
	// abort the run.
	fsys := fstest.MapFS{
		"0001_items.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);"),
		},
		"0002_items_again.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);\nCREATE TABLE extras(id TEXT PRIMARY KEY);"),
		},
	}

	require.NoError(t, ApplyMigrations(context.Background(), db, fsys))
	assert.EqualValues(t, 2, countMigrations(t, db))
	assert.True(t, tableExists(t, db, "extras"))
}

func TestApplyMigrationsDoesNotRecordFailedMigration(t *testing.T) {
	db := openInMemoryDB(t)

	bad := fstest.MapFS{
		"0001_bad.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREAT TABLE things(id INT);"),
		},
	}
	require.Error(t, ApplyMigrations(context.Background(), db, bad))
	assert.EqualValues(t, 0, countMigrations(t, db))

	good := fstest.MapFS{
		"0001_bad.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE things(id INT);"),
		},
	}
	require.NoError(t, ApplyMigrations(context.Background(), db, good))
	assert.EqualValues(t, 1, countMigrations(t, db))
	assert.True(t, tableExists(t, db, "things"))
}

func TestApplyMigrationsSkipsEmptyUpSection(t *testing.T) {
	db := openInMemoryDB(t)

	fsys := fstest.MapFS{
		"0001_noop.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\n\n-- +migrate Down\nDROP TABLE nothing;"),
		},
	}

	require.NoError(t, ApplyMigrations(context.Background(), db, fsys))
	assert.EqualValues(t, 0, countMigrations(t, db))
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a(id INT);\n-- +migrate Down\nDROP TABLE a;"
	up := ExtractUpMigration(content)
	assert.Contains(t, up, "CREATE TABLE a")
	assert.NotContains(t, up, "DROP TABLE a")

	// Files without markers run whole.
	assert.Equal(t, "CREATE TABLE b(id INT);", ExtractUpMigration("CREATE TABLE b(id INT);"))
}

func TestSplitStatements(t *testing.T) {
	stmts := SplitStatements(`
-- comment only
CREATE TABLE a(id INT);

ALTER TABLE a ADD COLUMN name TEXT;
-- trailing comment
`)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a(id INT)", stmts[0])
	assert.Equal(t, "ALTER TABLE a ADD COLUMN name TEXT", stmts[1])
}

func TestIsAlreadyExistsError(t *testing.T) {
	cases := map[string]bool{
		"Error 1050: Table 'users' already exists":             true,
		"Error 1060: Duplicate column name 'last_daily'":       true,
		"Error 1061: Duplicate key name 'idx_ai_usage'":        true,
		"Error 1064: You have an error in your SQL syntax":     false,
		"Error 1054: Unknown column 'balance' in 'field list'": false,
		// A duplicate-entry INSERT is a data failure, not idempotent DDL;
		// tolerating it would record a half-applied file.
		"Error 1062: Duplicate entry 'g1-u1' for key 'PRIMARY'": false,
	}
	for msg, want := range cases {
		assert.Equal(t, want, IsAlreadyExistsError(errString(msg)), msg)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
