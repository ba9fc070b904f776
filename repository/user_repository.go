// Package repository, veritabanı erişim katmanını tanımlar.
//
// Service katmanı doğrudan SQL yazmaz; bu paketteki interface'ler üzerinden
// çalışır. Her interface'in SQLite implementasyonu sqlite_*.go dosyalarındadır.
// Constructor'lar database.TxQuerier alır: aynı repo hem *sql.DB hem *sql.Tx
// ile kullanılabilir.
package repository

import (
	"context"
	"time"

	"github.com/cameronthecoder/django-ban/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int, error)

	// ListForAdmin, admin listesi için her kullanıcıyı now anındaki aktif
	// ban bilgisi ve warn sayısıyla birlikte döner.
	ListForAdmin(ctx context.Context, now time.Time) ([]models.AdminUserListItem, error)
}
