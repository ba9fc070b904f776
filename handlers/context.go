package handlers

import (
	"context"

	"github.com/cameronthecoder/django-ban/models"
)

// contextKey, context.Value için özel key tipi; string key çakışmasını önler.
type contextKey string

// UserContextKey, AuthMiddleware'in doğrulanmış kullanıcıyı koyduğu key.
const UserContextKey contextKey = "user"

// WithUser, kullanıcıyı context'e ekler.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext, AuthMiddleware'in eklediği kullanıcıyı döner.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}
