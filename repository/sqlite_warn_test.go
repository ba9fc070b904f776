package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/pkg"
)

func TestWarnRepo_CountAndDeleteByReceiver(t *testing.T) {
	db := newTestDB(t)
	users := NewSQLiteUserRepo(db)
	warns := NewSQLiteWarnRepo(db)
	ctx := context.Background()

	admin := createUser(t, users, "admin")
	target := createUser(t, users, "target")
	other := createUser(t, users, "other")

	for i := 0; i < 3; i++ {
		require.NoError(t, warns.Create(ctx, &models.Warn{CreatorID: &admin.ID, ReceiverID: target.ID}))
	}
	require.NoError(t, warns.Create(ctx, &models.Warn{CreatorID: &admin.ID, ReceiverID: other.ID}))

	n, err := warns.CountByReceiver(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	deleted, err := warns.DeleteByReceiver(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	n, err = warns.CountByReceiver(ctx, target.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = warns.CountByReceiver(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWarnRepo_ListGetDelete(t *testing.T) {
	db := newTestDB(t)
	users := NewSQLiteUserRepo(db)
	warns := NewSQLiteWarnRepo(db)
	ctx := context.Background()

	admin := createUser(t, users, "admin")
	target := createUser(t, users, "target")

	older := &models.Warn{CreatorID: &admin.ID, ReceiverID: target.ID, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &models.Warn{CreatorID: nil, ReceiverID: target.ID, CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, warns.Create(ctx, older))
	require.NoError(t, warns.Create(ctx, newer))

	list, err := warns.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, "target", list[0].ReceiverUsername)
	require.NotNil(t, list[1].CreatorUsername)
	assert.Equal(t, "admin", *list[1].CreatorUsername)

	got, err := warns.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	require.NoError(t, warns.Delete(ctx, older.ID))
	_, err = warns.GetByID(ctx, older.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.ErrorIs(t, warns.Delete(ctx, older.ID), pkg.ErrNotFound)
}
