package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/pkg"
)

func TestBanSweeper_SweepOnce(t *testing.T) {
	env := newTestEnv(t)
	moderation := env.moderation(3, 0)
	ctx := context.Background()

	bob := env.createUser(t, "bob")
	dave := env.createUser(t, "dave")

	past := env.clock.Now().Add(-time.Minute)
	_, err := moderation.RecordBan(ctx, nil, bob.ID, &past)
	require.NoError(t, err)
	_, err = moderation.RecordBan(ctx, nil, dave.ID, nil)
	require.NoError(t, err)

	require.NoError(t, env.sessions.Create(ctx, &models.Session{
		UserID:       bob.ID,
		RefreshToken: "stale",
		ExpiresAt:    env.clock.Now().Add(-time.Hour),
	}))

	sweeper := NewBanSweeper(moderation, env.sessions, time.Hour)
	sweeper.(*banSweeper).now = env.clock.Now

	n, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, env.countRows(t, "bans", bob.ID))
	assert.Equal(t, 1, env.countRows(t, "bans", dave.ID))

	_, err = env.sessions.GetByRefreshToken(ctx, "stale")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestBanSweeper_StartStop(t *testing.T) {
	env := newTestEnv(t)
	moderation := env.moderation(3, 0)

	bob := env.createUser(t, "bob")
	past := time.Now().Add(-time.Minute)
	_, err := moderation.RecordBan(context.Background(), nil, bob.ID, &past)
	require.NoError(t, err)

	sweeper := NewBanSweeper(moderation, env.sessions, time.Hour)
	sweeper.Start()

	// İlk tur Start'ta hemen çalışır.
	assert.Eventually(t, func() bool {
		return env.countRows(t, "bans", bob.ID) == 0
	}, 5*time.Second, 20*time.Millisecond)

	sweeper.Stop()
	sweeper.Stop()
}

func TestBanSweeper_Disabled(t *testing.T) {
	env := newTestEnv(t)

	sweeper := NewBanSweeper(env.moderation(3, 0), env.sessions, 0)
	sweeper.Start()
	sweeper.Stop()
}
