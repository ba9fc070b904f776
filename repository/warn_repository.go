package repository

import (
	"context"

	"github.com/cameronthecoder/django-ban/models"
)

// WarnRepository, warn veritabanı işlemleri için interface.
type WarnRepository interface {
	// Create, yeni warn satırı ekler. ID boşsa üretilir.
	Create(ctx context.Context, warn *models.Warn) error

	CountByReceiver(ctx context.Context, receiverID string) (int, error)

	// DeleteByReceiver, alıcının tüm warn'larını siler (eşik aşımı).
	DeleteByReceiver(ctx context.Context, receiverID string) (int64, error)

	GetByID(ctx context.Context, id string) (*models.Warn, error)
	List(ctx context.Context) ([]models.Warn, error)
	Delete(ctx context.Context, id string) error
}
