package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/pkg"
)

func newTestAuth(t *testing.T, env *testEnv, moderation ModerationService) AuthService {
	t.Helper()

	svc := NewAuthService(env.users, env.sessions, moderation, "test-secret", 15, 7)
	impl := svc.(*authService)
	impl.bcryptCost = bcrypt.MinCost
	impl.now = env.clock.Now
	return svc
}

func register(t *testing.T, svc AuthService, username string) *AuthTokens {
	t.Helper()

	tokens, err := svc.Register(context.Background(), &models.CreateUserRequest{
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)
	return tokens
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuth(t, env, env.moderation(3, 0))

	first := register(t, svc, "alice")
	second := register(t, svc, "bob")

	assert.True(t, first.User.IsAdmin)
	assert.False(t, second.User.IsAdmin)
	assert.Empty(t, first.User.PasswordHash)
	assert.Equal(t, "en", second.User.Language)

	claims, err := svc.ValidateAccessToken(first.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestRegister_Errors(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuth(t, env, env.moderation(3, 0))
	register(t, svc, "alice")

	tests := []struct {
		name string
		req  models.CreateUserRequest
		want error
	}{
		{name: "duplicate", req: models.CreateUserRequest{Username: "ALICE", Password: "password123"}, want: pkg.ErrAlreadyExists},
		{name: "short_password", req: models.CreateUserRequest{Username: "carol", Password: "short"}, want: pkg.ErrBadRequest},
		{name: "bad_username", req: models.CreateUserRequest{Username: "a b", Password: "password123"}, want: pkg.ErrBadRequest},
		{name: "bad_email", req: models.CreateUserRequest{Username: "carol", Password: "password123", Email: "nope"}, want: pkg.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuth(t, env, env.moderation(3, 0))
	register(t, svc, "alice")
	ctx := context.Background()

	tokens, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, err = svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = svc.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = svc.Login(ctx, &models.LoginRequest{Username: "alice"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestLogin_RejectsBannedUser(t *testing.T) {
	env := newTestEnv(t)
	moderation := env.moderation(3, time.Minute)
	svc := newTestAuth(t, env, moderation)
	ctx := context.Background()

	register(t, svc, "alice")
	bob := register(t, svc, "bob")

	end := env.clock.Now().Add(time.Hour)
	_, err := moderation.RecordBan(ctx, nil, bob.User.ID, &end)
	require.NoError(t, err)

	_, err = svc.Login(ctx, &models.LoginRequest{Username: "bob", Password: "password123"})
	require.ErrorIs(t, err, pkg.ErrBanned)

	var banned *pkg.BannedError
	require.True(t, errors.As(err, &banned))
	require.NotNil(t, banned.EndDate)
	assert.True(t, end.Equal(*banned.EndDate))

	// Yanlış şifre ban bilgisini sızdırmaz.
	_, err = svc.Login(ctx, &models.LoginRequest{Username: "bob", Password: "wrong-password"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Ban bitince giriş tekrar mümkün.
	env.clock.Advance(time.Hour)
	_, err = svc.Login(ctx, &models.LoginRequest{Username: "bob", Password: "password123"})
	assert.NoError(t, err)
}

func TestLogin_RejectsEscalatedUser(t *testing.T) {
	env := newTestEnv(t)
	moderation := env.moderation(2, 0)
	svc := newTestAuth(t, env, moderation)
	ctx := context.Background()

	bob := register(t, svc, "bob")
	for range 2 {
		_, err := moderation.RecordWarn(ctx, nil, bob.User.ID)
		require.NoError(t, err)
	}

	_, err := svc.Login(ctx, &models.LoginRequest{Username: "bob", Password: "password123"})
	var banned *pkg.BannedError
	require.True(t, errors.As(err, &banned))
	assert.Nil(t, banned.EndDate)
}

func TestRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	moderation := env.moderation(3, 0)
	svc := newTestAuth(t, env, moderation)
	ctx := context.Background()

	bob := register(t, svc, "bob")

	refreshed, err := svc.RefreshToken(ctx, bob.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, bob.RefreshToken, refreshed.RefreshToken)

	// Refresh token tek kullanımlık.
	_, err = svc.RefreshToken(ctx, bob.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Ban oturumları iptal eder.
	_, err = moderation.RecordBan(ctx, nil, bob.User.ID, nil)
	require.NoError(t, err)
	_, err = svc.RefreshToken(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Ban sonrası açılmış bir oturum da yenilenemez.
	require.NoError(t, env.sessions.Create(ctx, &models.Session{
		UserID:       bob.User.ID,
		RefreshToken: "late-session",
		ExpiresAt:    env.clock.Now().Add(time.Hour),
	}))
	_, err = svc.RefreshToken(ctx, "late-session")
	assert.ErrorIs(t, err, pkg.ErrBanned)
}

func TestRefreshToken_Expired(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuth(t, env, env.moderation(3, 0))

	bob := register(t, svc, "bob")
	env.clock.Advance(8 * 24 * time.Hour)

	_, err := svc.RefreshToken(context.Background(), bob.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestLogoutAndMe(t *testing.T) {
	env := newTestEnv(t)
	moderation := env.moderation(3, 0)
	svc := newTestAuth(t, env, moderation)
	ctx := context.Background()

	bob := register(t, svc, "bob")

	me, err := svc.Me(ctx, bob.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", me.User.Username)
	assert.False(t, me.Ban.Banned)

	require.NoError(t, svc.Logout(ctx, bob.RefreshToken))
	require.NoError(t, svc.Logout(ctx, bob.RefreshToken))

	_, err = svc.RefreshToken(ctx, bob.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestValidateAccessToken_Invalid(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuth(t, env, env.moderation(3, 0))
	other := NewAuthService(env.users, env.sessions, env.moderation(3, 0), "other-secret", 15, 7)

	bob := register(t, other, "bob")

	_, err := svc.ValidateAccessToken(bob.AccessToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = svc.ValidateAccessToken("garbage")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}
