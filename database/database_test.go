package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	migrations, err := fs.Sub(EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := New(filepath.Join(t.TempDir(), "test.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "simple",
			in:   "CREATE TABLE a (x INT); CREATE TABLE b (y INT);",
			want: []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"},
		},
		{
			name: "semicolon_in_literal",
			in:   "INSERT INTO a VALUES ('x;y'); SELECT 1",
			want: []string{"INSERT INTO a VALUES ('x;y')", "SELECT 1"},
		},
		{
			name: "escaped_quote",
			in:   "INSERT INTO a VALUES ('it''s; fine');",
			want: []string{"INSERT INTO a VALUES ('it''s; fine')"},
		},
		{
			name: "line_comment",
			in:   "-- header; with semicolon\nSELECT 1;",
			want: []string{"SELECT 1"},
		},
		{
			name: "empty",
			in:   " ;\n; ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitStatements(tt.in))
		})
	}
}

func TestNew_MigrationsAppliedOnce(t *testing.T) {
	migrations, err := fs.Sub(EmbeddedMigrations, "migrations")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New(path, migrations)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path, migrations)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	for _, table := range []string{"users", "sessions", "bans", "warns"} {
		var n int
		require.NoError(t, db.Conn.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&n))
		assert.Equal(t, 1, n, table)
	}
}

func TestWithTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	insert := func(tx *sql.Tx, name string) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO users (username, password_hash) VALUES (?, 'x')", name)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
		return n
	}

	t.Run("commit", func(t *testing.T) {
		err := WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
			return insert(tx, "alice")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "bob"))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})

	t.Run("rollback_on_panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
				require.NoError(t, insert(tx, "carol"))
				panic("boom")
			})
		})
		assert.Equal(t, 1, count())
	})
}

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2024, 5, 1, 15, 4, 5, 999, loc)
	assert.Equal(t, "2024-05-01 12:04:05", FormatTime(ts))
}
