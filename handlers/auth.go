// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler ince olmalı:
//  1. Request body'yi parse et (JSON → struct)
//  2. Service katmanını çağır
//  3. Sonucu HTTP response olarak döndür
//
// Handler iş mantığı içermez ve DB'ye doğrudan erişmez.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/pkg"
	"github.com/cameronthecoder/django-ban/pkg/i18n"
	"github.com/cameronthecoder/django-ban/pkg/metrics"
	"github.com/cameronthecoder/django-ban/pkg/ratelimit"
	"github.com/cameronthecoder/django-ban/services"
)

// AuthHandler, auth endpoint'lerini yöneten struct.
type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.LoginRateLimiter
	messages     *i18n.Bundle
}

// NewAuthHandler, constructor.
// loginLimiter nil ise rate limiting devre dışı kalır.
func NewAuthHandler(authService services.AuthService, loginLimiter *ratelimit.LoginRateLimiter, messages *i18n.Bundle) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
		messages:     messages,
	}
}

// Register godoc
// POST /api/auth/register
// İlk kullanıcı admin olur.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Language == "" {
		req.Language = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	}

	tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, tokens)
}

// Login godoc
// POST /api/auth/login
//
// IP bazlı brute-force koruması: limit aşılınca 429 + Retry-After.
// Başarılı login sayacı sıfırlar. Banlı hesap 403 alır.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	loc := h.messages.Localizer(i18n.DetectLanguage(r.Header.Get("Accept-Language")))

	ip := ratelimit.ExtractIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		metrics.LoginRejected.WithLabelValues("rate_limited").Inc()
		retryAfter := h.loginLimiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			loc.TWithParams("auth.tooManyAttempts", map[string]string{
				"retry": ratelimit.FormatRetryMessage(retryAfter),
			}))
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		var banned *pkg.BannedError
		switch {
		case errors.As(err, &banned):
			WriteBanned(w, loc, banned.EndDate)
		case errors.Is(err, pkg.ErrUnauthorized):
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, loc.T("auth.invalidCredentials"))
		default:
			pkg.Error(w, err)
		}
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	pkg.JSON(w, http.StatusOK, tokens)
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh godoc
// POST /api/auth/refresh
// Body: { "refresh_token": "..." }
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RefreshToken == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	tokens, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		var banned *pkg.BannedError
		if errors.As(err, &banned) {
			WriteBanned(w, h.messages.Localizer(i18n.DetectLanguage(r.Header.Get("Accept-Language"))), banned.EndDate)
			return
		}
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, tokens)
}

// Logout godoc
// POST /api/auth/logout
// Body: { "refresh_token": "..." }
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me godoc
// GET /api/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	me, err := h.authService.Me(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, me)
}

// BannedResponse, 403 ban yanıtının data alanı.
type BannedResponse struct {
	BannedUntil *time.Time `json:"banned_until"` // nil → kalıcı
	Message     string     `json:"message,omitempty"`
}

// WriteBanned, banlı kullanıcıya yerelleştirilmiş 403 yanıtı yazar.
// Login, refresh ve AuthMiddleware aynı yanıtı kullanır.
func WriteBanned(w http.ResponseWriter, loc *i18n.Localizer, endDate *time.Time) {
	data := BannedResponse{BannedUntil: endDate}
	if endDate != nil {
		data.Message = loc.TWithParams("auth.bannedUntil", map[string]string{
			"date": endDate.UTC().Format(time.RFC3339),
		})
	}
	pkg.ErrorWithData(w, http.StatusForbidden, loc.T("auth.accountBanned"), data)
}
