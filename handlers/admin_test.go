package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/pkg"
)

type fakeModeration struct {
	actorID    string
	banReq     *models.BanUsersRequest
	warnReq    *models.WarnUsersRequest
	deletedBan string
	purgedAt   time.Time
	banErr     error
}

func (f *fakeModeration) RecordWarn(context.Context, *string, string) (*models.WarnOutcome, error) {
	return &models.WarnOutcome{}, nil
}

func (f *fakeModeration) RecordBan(context.Context, *string, string, *time.Time) (*models.Ban, error) {
	return &models.Ban{}, nil
}

func (f *fakeModeration) IsBanned(context.Context, string, time.Time) (bool, error) {
	return false, nil
}

func (f *fakeModeration) BanStatus(context.Context, string, time.Time) (*models.BanStatus, error) {
	return &models.BanStatus{}, nil
}

func (f *fakeModeration) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.purgedAt = now
	return 4, nil
}

func (f *fakeModeration) BanUsers(_ context.Context, actorID string, req *models.BanUsersRequest) ([]models.Ban, error) {
	f.actorID = actorID
	f.banReq = req
	if f.banErr != nil {
		return nil, f.banErr
	}
	bans := make([]models.Ban, 0, len(req.UserIDs))
	for _, id := range req.UserIDs {
		bans = append(bans, models.Ban{ID: "ban-" + id, ReceiverID: id})
	}
	return bans, nil
}

func (f *fakeModeration) WarnUsers(_ context.Context, actorID string, req *models.WarnUsersRequest) ([]models.WarnOutcome, error) {
	f.actorID = actorID
	f.warnReq = req
	return []models.WarnOutcome{{Skipped: true}}, nil
}

func (f *fakeModeration) ListBans(context.Context) ([]models.Ban, error) {
	return []models.Ban{{ID: "b1"}}, nil
}

func (f *fakeModeration) ListWarns(context.Context) ([]models.Warn, error) {
	return []models.Warn{}, nil
}

func (f *fakeModeration) DeleteBan(_ context.Context, id string) error {
	if id == "missing" {
		return pkg.ErrNotFound
	}
	f.deletedBan = id
	return nil
}

func (f *fakeModeration) DeleteWarn(context.Context, string) error { return nil }

type fakeUserAdmin struct{}

func (fakeUserAdmin) ListUsers(context.Context) ([]models.AdminUserListItem, error) {
	return []models.AdminUserListItem{{ID: "u1", Username: "bob", IsBanned: true, WarnCount: 2}}, nil
}

func adminRouter(h *AdminHandler, actor *models.User) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), actor)))
		})
	})
	r.Get("/api/admin/users", h.ListUsers)
	r.Post("/api/admin/users/ban", h.BanUsers)
	r.Post("/api/admin/users/warn", h.WarnUsers)
	r.Get("/api/admin/bans", h.ListBans)
	r.Delete("/api/admin/bans/{id}", h.DeleteBan)
	r.Post("/api/admin/bans/purge", h.PurgeBans)
	return r
}

func TestAdmin_BanUsers(t *testing.T) {
	mod := &fakeModeration{}
	router := adminRouter(NewAdminHandler(mod, fakeUserAdmin{}), &models.User{ID: "admin"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postJSON("/api/admin/users/ban", map[string]any{
		"user_ids": []string{"u1", "u2"},
		"period":   "week",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", mod.actorID)
	assert.Equal(t, models.BanPeriodWeek, mod.banReq.Period)

	var result models.BulkBanResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Len(t, result.Bans, 2)
}

func TestAdmin_BanUsersErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "bad_request", err: fmt.Errorf("%w: you cannot ban yourself", pkg.ErrBadRequest), want: http.StatusBadRequest},
		{name: "not_found", err: fmt.Errorf("%w: user x", pkg.ErrNotFound), want: http.StatusNotFound},
		{name: "internal", err: fmt.Errorf("disk full"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := adminRouter(NewAdminHandler(&fakeModeration{banErr: tt.err}, fakeUserAdmin{}), &models.User{ID: "admin"})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, postJSON("/api/admin/users/ban", map[string]any{"user_ids": []string{"u1"}, "period": "day"}))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAdmin_WarnUsers(t *testing.T) {
	mod := &fakeModeration{}
	router := adminRouter(NewAdminHandler(mod, fakeUserAdmin{}), &models.User{ID: "admin"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postJSON("/api/admin/users/warn", map[string]any{"user_ids": []string{"u1"}}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u1"}, mod.warnReq.UserIDs)

	var result models.BulkWarnResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].Skipped)
}

func TestAdmin_DeleteBan(t *testing.T) {
	mod := &fakeModeration{}
	router := adminRouter(NewAdminHandler(mod, fakeUserAdmin{}), &models.User{ID: "admin"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/bans/b42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b42", mod.deletedBan)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/bans/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_PurgeAndLists(t *testing.T) {
	mod := &fakeModeration{}
	h := NewAdminHandler(mod, fakeUserAdmin{})
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }
	router := adminRouter(h, &models.User{ID: "admin"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/bans/purge", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixed, mod.purgedAt)

	var purged models.PurgeResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &purged))
	assert.Equal(t, int64(4), purged.Deleted)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var users []models.AdminUserListItem
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &users))
	require.Len(t, users, 1)
	assert.True(t, users[0].IsBanned)
	assert.Equal(t, 2, users[0].WarnCount)
}
