package services

import (
	"context"
	"time"

	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/repository"
)

// UserAdminService, admin panelinin kullanıcı listesi.
type UserAdminService interface {
	// ListUsers, her kullanıcıyı aktif ban bilgisi ve warn sayısıyla döner.
	ListUsers(ctx context.Context) ([]models.AdminUserListItem, error)
}

type userAdminService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewUserAdminService, constructor.
func NewUserAdminService(userRepo repository.UserRepository) UserAdminService {
	return &userAdminService{userRepo: userRepo, now: time.Now}
}

func (s *userAdminService) ListUsers(ctx context.Context) ([]models.AdminUserListItem, error) {
	return s.userRepo.ListForAdmin(ctx, s.now())
}
