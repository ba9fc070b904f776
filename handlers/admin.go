// Package handlers: AdminHandler, moderasyon endpoint'leri.
//
// Sadece admin kullanıcılar erişir (AdminMiddleware).
// Thin handler pattern: parse request → call service → return response.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/pkg"
	"github.com/cameronthecoder/django-ban/services"
)

// AdminHandler, admin paneli endpoint'lerini yönetir.
type AdminHandler struct {
	moderation services.ModerationService
	users      services.UserAdminService
	now        func() time.Time
}

// NewAdminHandler, constructor.
func NewAdminHandler(moderation services.ModerationService, users services.UserAdminService) *AdminHandler {
	return &AdminHandler{moderation: moderation, users: users, now: time.Now}
}

// ListUsers: GET /api/admin/users
// Kullanıcıları ban durumu ve warn sayısıyla listeler.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}

// BanUsers: POST /api/admin/users/ban
// Body: { "user_ids": [...], "period": "day|week|month|permanent" }
func (h *AdminHandler) BanUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.BanUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bans, err := h.moderation.BanUsers(r.Context(), actor.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, models.BulkBanResult{Bans: bans})
}

// WarnUsers: POST /api/admin/users/warn
// Body: { "user_ids": [...] }
func (h *AdminHandler) WarnUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.WarnUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcomes, err := h.moderation.WarnUsers(r.Context(), actor.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, models.BulkWarnResult{Outcomes: outcomes})
}

// ListBans: GET /api/admin/bans
func (h *AdminHandler) ListBans(w http.ResponseWriter, r *http.Request) {
	bans, err := h.moderation.ListBans(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, bans)
}

// DeleteBan: DELETE /api/admin/bans/{id}
func (h *AdminHandler) DeleteBan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "ban id is required")
		return
	}

	if err := h.moderation.DeleteBan(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "ban deleted"})
}

// PurgeBans: POST /api/admin/bans/purge
// Süresi dolmuş ban'ları hemen siler.
func (h *AdminHandler) PurgeBans(w http.ResponseWriter, r *http.Request) {
	n, err := h.moderation.PurgeExpired(r.Context(), h.now())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, models.PurgeResult{Deleted: n})
}

// ListWarns: GET /api/admin/warns
func (h *AdminHandler) ListWarns(w http.ResponseWriter, r *http.Request) {
	warns, err := h.moderation.ListWarns(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, warns)
}

// DeleteWarn: DELETE /api/admin/warns/{id}
func (h *AdminHandler) DeleteWarn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "warn id is required")
		return
	}

	if err := h.moderation.DeleteWarn(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "warn deleted"})
}
