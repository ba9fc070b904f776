package middleware

import (
	"net/http"

	"github.com/cameronthecoder/django-ban/handlers"
	"github.com/cameronthecoder/django-ban/pkg"
)

// AdminMiddleware, admin yetkisi zorunlu kılar. AuthMiddleware'den SONRA çalışır.
//
//	authMw.Require(adminMw.Require(http.HandlerFunc(adminHandler.ListBans)))
type AdminMiddleware struct{}

// NewAdminMiddleware, constructor.
func NewAdminMiddleware() *AdminMiddleware {
	return &AdminMiddleware{}
}

// Require, context'teki kullanıcı admin değilse 403 döner.
func (m *AdminMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := handlers.UserFromContext(r.Context())
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
			return
		}

		if !user.IsAdmin {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
