package repository

import (
	"context"
	"time"

	"github.com/cameronthecoder/django-ban/models"
)

// BanRepository, ban veritabanı işlemleri için interface.
//
// "Aktif ban" = end_date NULL veya end_date > now. Birden fazla aktif ban
// oluşmaması service katmanının sorumluluğundadır (transaction içinde
// GetActiveByReceiver → Create/UpdateEndDate).
type BanRepository interface {
	// Create, yeni ban satırı ekler. ID boşsa üretilir.
	Create(ctx context.Context, ban *models.Ban) error

	// GetActiveByReceiver, alıcının now anındaki aktif ban'ını döner.
	// Yoksa pkg.ErrNotFound.
	GetActiveByReceiver(ctx context.Context, receiverID string, now time.Time) (*models.Ban, error)

	// GetStrongestByReceiver, alıcının en güçlü ban'ını (kalıcı, yoksa en geç
	// biten) zamandan bağımsız döner. Yoksa pkg.ErrNotFound. Herhangi bir t
	// anında aktif ban varsa bu ban da t anında aktiftir; ban durumu cache'i
	// bu yüzden tek satır tutar.
	GetStrongestByReceiver(ctx context.Context, receiverID string) (*models.Ban, error)

	// UpdateEndDate, mevcut ban'ın bitiş tarihini ve oluşturanını günceller.
	UpdateEndDate(ctx context.Context, id string, creatorID *string, endDate *time.Time) error

	GetByID(ctx context.Context, id string) (*models.Ban, error)

	// List, tüm ban'ları kullanıcı adlarıyla birlikte en yeniden eskiye döner.
	List(ctx context.Context) ([]models.Ban, error)

	Delete(ctx context.Context, id string) error

	// DeleteExpired, end_date'i dolu ve now'a eşit/öncesi olan tüm ban'ları siler.
	// Silinen satır sayısını döner.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
