package repository

import (
	"context"
	"time"

	"github.com/cameronthecoder/django-ban/models"
)

// SessionRepository, refresh token oturumları için interface.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUserID, kullanıcının tüm oturumlarını siler. Ban sonrası
	// refresh token'lar bu şekilde iptal edilir.
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
