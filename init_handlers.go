// Package main: Handler katmanı başlatma.
package main

import (
	"github.com/cameronthecoder/django-ban/config"
	"github.com/cameronthecoder/django-ban/handlers"
	"github.com/cameronthecoder/django-ban/pkg/i18n"
	"github.com/cameronthecoder/django-ban/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth  *handlers.AuthHandler
	Admin *handlers.AdminHandler
	WS    *ws.Handler
}

func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, messages *i18n.Bundle, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:  handlers.NewAuthHandler(svcs.Auth, limiters.Login, messages),
		Admin: handlers.NewAdminHandler(svcs.Moderation, svcs.UserAdmin),
		WS:    ws.NewHandler(hub, svcs.Auth, svcs.Moderation, cfg.Server.AllowedOrigins),
	}
}
