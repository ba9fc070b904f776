// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware bir func(next http.Handler) http.Handler'dır: kendi kontrolünü
// yapar, başarılıysa next'i çağırır, değilse yanıtı yazıp zinciri keser.
// Zincir: AuthMiddleware.Require → AdminMiddleware.Require → Handler
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/cameronthecoder/django-ban/handlers"
	"github.com/cameronthecoder/django-ban/pkg"
	"github.com/cameronthecoder/django-ban/pkg/i18n"
	"github.com/cameronthecoder/django-ban/repository"
	"github.com/cameronthecoder/django-ban/services"
)

// AuthMiddleware, JWT doğrulama ve ban kapısı.
type AuthMiddleware struct {
	authService services.AuthService
	bans        services.BanStatusChecker
	userRepo    repository.UserRepository
	messages    *i18n.Bundle
	now         func() time.Time
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(
	authService services.AuthService,
	bans services.BanStatusChecker,
	userRepo repository.UserRepository,
	messages *i18n.Bundle,
) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		bans:        bans,
		userRepo:    userRepo,
		messages:    messages,
		now:         time.Now,
	}
}

// Require, geçerli bir access token ve aktif ban olmamasını zorunlu kılar.
//
// Header formatı: Authorization: Bearer <token>
//   - Token yok/geçersiz → 401
//   - Kullanıcı silinmiş → 401
//   - Aktif ban → 403 (kullanıcının dilinde "This account has been banned.")
//
// Access token ban'dan önce alınmış olsa bile ban anında etkili olur.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}
		user.PasswordHash = ""

		status, err := m.bans.BanStatus(r.Context(), user.ID, m.now())
		if err != nil {
			pkg.Error(w, err)
			return
		}
		if status.Banned {
			handlers.WriteBanned(w, m.messages.Localizer(user.Language), status.EndDate)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
	})
}
