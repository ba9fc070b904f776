package repository

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cameronthecoder/django-ban/database"
	"github.com/cameronthecoder/django-ban/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db.Conn
}

func createUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()

	u := &models.User{Username: username, PasswordHash: "hash", Language: "en"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }
