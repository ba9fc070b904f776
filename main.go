// Package main, ban/warn moderasyon servisinin giriş noktasıdır.
//
// Komutlar:
//
//	django-ban                      HTTP server (varsayılan)
//	django-ban serve                HTTP server
//	django-ban clean-inactive-bans  süresi dolmuş ban'ları bir kez siler ve çıkar
//
// Wire-up sırası:
//  1. Config + logger
//  2. Database (embedded migration'lar)
//  3. i18n
//  4. Repository → Hub → Service → Handler → Route
//  5. HTTP server + ban sweeper
//  6. Graceful shutdown
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cameronthecoder/django-ban/config"
	"github.com/cameronthecoder/django-ban/database"
	"github.com/cameronthecoder/django-ban/pkg/i18n"
	"github.com/cameronthecoder/django-ban/pkg/logger"
	"github.com/cameronthecoder/django-ban/ws"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "clean-inactive-bans":
		err = runCleanInactiveBans()
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("fatal", "component", "main", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: %s [serve | clean-inactive-bans]\n", os.Args[0])
}

// bootstrap, config, logger ve database'i hazırlar. Her iki komut da kullanır.
func bootstrap() (*config.Config, *logger.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Setup(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})

	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Close()
		return nil, nil, nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	db, err := database.New(cfg.Database.Path, migrations)
	if err != nil {
		log.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, log, db, nil
}

// runCleanInactiveBans, end_date'i geçmiş tüm ban'ları siler.
// Cron ile periyodik çalıştırılmak için tasarlanmıştır; tekrar çalıştırmak güvenlidir.
func runCleanInactiveBans() error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Close()
	defer db.Close()

	repos := initRepositories(db.Conn)
	hub := ws.NewHub() // bağlantısız hub: event'ler kimseye gitmez
	svcs, limiters := initServices(db.Conn, repos, hub, cfg)
	defer limiters.Login.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := svcs.Moderation.PurgeExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to purge expired bans: %w", err)
	}

	fmt.Printf("Successfully deleted %d inactive bans\n", n)
	return nil
}

func runServe() error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Close()
	defer db.Close()

	log.Info("server starting", "component", "main", "addr", cfg.Server.Addr(), "warns_threshold", cfg.Moderation.WarnsThreshold)

	locales, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		return fmt.Errorf("failed to open embedded locales: %w", err)
	}
	messages, err := i18n.Load(locales)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	repos := initRepositories(db.Conn)

	hub := ws.NewHub()
	go hub.Run()

	svcs, limiters := initServices(db.Conn, repos, hub, cfg)
	h := initHandlers(svcs, limiters, hub, messages, cfg)
	router := initRoutes(h, svcs, repos, messages, cfg)

	svcs.Sweeper.Start()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "component", "main", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("shutting down", "component", "main")

	// Önce arka plan işleri ve WebSocket bağlantıları, sonra HTTP server.
	svcs.Sweeper.Stop()
	limiters.Login.Stop()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped gracefully", "component", "main")
	return nil
}
