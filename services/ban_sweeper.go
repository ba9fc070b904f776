package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cameronthecoder/django-ban/repository"
)

// BanSweeper, süresi dolmuş ban'ları ve refresh oturumlarını periyodik
// olarak temizleyen arka plan servisi.
//
// Goroutine pattern: time.NewTicker + select + stopCh.
// main.go'da Start ile başlatılır, graceful shutdown sırasında Stop çağrılır.
type BanSweeper interface {
	Start()
	Stop()

	// SweepOnce, tek bir temizlik turu çalıştırır ve silinen ban sayısını döner.
	SweepOnce(ctx context.Context) (int64, error)
}

type banSweeper struct {
	moderation  ModerationService
	sessionRepo repository.SessionRepository
	interval    time.Duration
	now         func() time.Time
	log         *slog.Logger

	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex // Start/Stop race koruması
	started bool
	stopped bool
}

// NewBanSweeper, constructor. interval <= 0 ise Start hiçbir şey yapmaz.
func NewBanSweeper(moderation ModerationService, sessionRepo repository.SessionRepository, interval time.Duration) BanSweeper {
	return &banSweeper{
		moderation:  moderation,
		sessionRepo: sessionRepo,
		interval:    interval,
		now:         time.Now,
		log:         slog.With("component", "ban-sweeper"),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start, sweeper goroutine'ini başlatır. İlk tur hemen çalışır.
func (s *banSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.interval <= 0 {
		s.log.Info("background sweep disabled")
		return
	}
	if s.started || s.stopped {
		return
	}
	s.started = true

	s.log.Info("starting", "interval", s.interval)

	go func() {
		defer close(s.doneCh)

		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopCh:
				s.log.Info("stopped")
				return
			}
		}
	}()
}

// Stop, goroutine'i durdurur ve devam eden turun bitmesini bekler.
func (s *banSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)

	if s.started {
		<-s.doneCh
	}
}

func (s *banSweeper) SweepOnce(ctx context.Context) (int64, error) {
	now := s.now()

	n, err := s.moderation.PurgeExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	sessions, err := s.sessionRepo.DeleteExpired(ctx, now)
	if err != nil {
		// Ban temizliği tamamlandı; oturum hatası sadece loglanır.
		s.log.Warn("failed to delete expired sessions", "error", err)
	} else if sessions > 0 {
		s.log.Debug("expired sessions deleted", "deleted", sessions)
	}

	return n, nil
}

func (s *banSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if _, err := s.SweepOnce(ctx); err != nil {
		s.log.Error("sweep failed", "error", err)
	}
}
