// Package main: HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini chi router'a bağlar.
// Gruplar:
//   - public: health, register/login/refresh, metrics, ws (kendi token kontrolü)
//   - auth: JWT + ban kapısı
//   - admin: auth + admin yetkisi
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/cameronthecoder/django-ban/config"
	"github.com/cameronthecoder/django-ban/middleware"
	"github.com/cameronthecoder/django-ban/pkg"
	"github.com/cameronthecoder/django-ban/pkg/i18n"
)

func initRoutes(h *Handlers, svcs *Services, repos *Repositories, messages *i18n.Bundle, cfg *config.Config) http.Handler {
	authMw := middleware.NewAuthMiddleware(svcs.Auth, svcs.Moderation, repos.User, messages)
	adminMw := middleware.NewAdminMiddleware()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "django-ban"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// WebSocket: tarayıcılar upgrade sırasında header gönderemez, token ?token= ile gelir.
	r.Get("/ws", h.WS.HandleConnection)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/refresh", h.Auth.Refresh)
		r.With(authMw.Require).Post("/logout", h.Auth.Logout)
	})

	r.With(authMw.Require).Get("/api/users/me", h.Auth.Me)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMw.Require, adminMw.Require)

		r.Get("/users", h.Admin.ListUsers)
		r.Post("/users/ban", h.Admin.BanUsers)
		r.Post("/users/warn", h.Admin.WarnUsers)

		// Literal path'ler parametrik path'lerden önce.
		r.Get("/bans", h.Admin.ListBans)
		r.Post("/bans/purge", h.Admin.PurgeBans)
		r.Delete("/bans/{id}", h.Admin.DeleteBan)

		r.Get("/warns", h.Admin.ListWarns)
		r.Delete("/warns/{id}", h.Admin.DeleteWarn)
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
		AllowCredentials: true,
	})

	return corsHandler.Handler(r)
}
