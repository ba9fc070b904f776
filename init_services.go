// Package main: Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Sıralama: ModerationService → AuthService (ban kapısı için moderation'a bağımlı).
package main

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/cameronthecoder/django-ban/config"
	"github.com/cameronthecoder/django-ban/pkg/email"
	"github.com/cameronthecoder/django-ban/pkg/ratelimit"
	"github.com/cameronthecoder/django-ban/services"
	"github.com/cameronthecoder/django-ban/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth       services.AuthService
	Moderation services.ModerationService
	UserAdmin  services.UserAdminService
	Sweeper    services.BanSweeper
}

// RateLimiters, rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login *ratelimit.LoginRateLimiter
}

func initServices(db *sql.DB, repos *Repositories, hub ws.EventPublisher, cfg *config.Config) (*Services, *RateLimiters) {
	// Resend yapılandırılmamışsa mailer nil kalır → bildirim gönderilmez.
	var mailer email.EmailSender
	if cfg.Email.ResendAPIKey != "" && cfg.Email.FromEmail != "" {
		mailer = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		slog.Info("email notifications enabled", "component", "main", "provider", "resend")
	}

	moderation := services.NewModerationService(services.ModerationDeps{
		DB:             db,
		BanRepo:        repos.Ban,
		WarnRepo:       repos.Warn,
		UserRepo:       repos.User,
		SessionRepo:    repos.Session,
		Hub:            hub,
		Mailer:         mailer,
		WarnsThreshold: cfg.Moderation.WarnsThreshold,
		BanCacheTTL:    time.Duration(cfg.Moderation.BanCacheTTLSeconds) * time.Second,
	})

	authService := services.NewAuthService(
		repos.User,
		repos.Session,
		moderation,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	sweeper := services.NewBanSweeper(
		moderation,
		repos.Session,
		time.Duration(cfg.Moderation.SweepIntervalMinutes)*time.Minute,
	)

	svcs := &Services{
		Auth:       authService,
		Moderation: moderation,
		UserAdmin:  services.NewUserAdminService(repos.User),
		Sweeper:    sweeper,
	}

	limiters := &RateLimiters{
		Login: ratelimit.NewLoginRateLimiter(
			cfg.Login.MaxAttempts,
			time.Duration(cfg.Login.WindowSeconds)*time.Second,
		),
	}

	return svcs, limiters
}
