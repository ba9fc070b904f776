// Package ratelimit, brute-force saldırılarına karşı
// IP bazlı login rate limiting.
//
// Her IP için bir golang.org/x/time/rate token bucket tutulur:
// window süresi içinde maxAttempts deneme, ardından window/maxAttempts
// aralıkla birer yeni hak. Başarılı login sonrası Reset ile bucket silinir.
// Kullanılmayan bucket'lar arka plan goroutine'i ile temizlenir.
//
// pkg/ratelimit hiçbir proje içi pakete bağımlı değildir (leaf dependency);
// handlers ve middleware arasında import cycle oluşmaz.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginRateLimiter, IP bazlı login rate limiter.
//
//	limiter := NewLoginRateLimiter(5, 2*time.Minute)
//	if !limiter.Allow(ip) { return 429 }
//	// başarılı login:
//	limiter.Reset(ip)
type LoginRateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	maxAttempts int
	window      time.Duration
	every       rate.Limit
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewLoginRateLimiter, rate limiter oluşturur ve temizleme goroutine'ini başlatır.
func NewLoginRateLimiter(maxAttempts int, window time.Duration) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		visitors:    make(map[string]*visitor),
		maxAttempts: maxAttempts,
		window:      window,
		every:       rate.Every(window / time.Duration(maxAttempts)),
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, ip'nin bir deneme hakkı olup olmadığını döner ve hakkı tüketir.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	return rl.AllowAt(ip, time.Now())
}

// AllowAt, Allow'un zamanı dışarıdan verilen hali (test için).
func (rl *LoginRateLimiter) AllowAt(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.maxAttempts)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Reset, başarılı login sonrası ip'nin bucket'ını siler.
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.visitors, ip)
}

// RetryAfterSeconds, bir sonraki denemeye kadar beklenecek süre (saniye, yukarı yuvarlı).
func (rl *LoginRateLimiter) RetryAfterSeconds(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		return 0
	}

	r := v.limiter.Reserve()
	if !r.OK() {
		return int(rl.window.Seconds())
	}
	delay := r.Delay()
	r.Cancel()

	if delay <= 0 {
		return 0
	}
	return int(delay.Seconds()) + 1
}

// Stop, temizleme goroutine'ini durdurur.
func (rl *LoginRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup, window süresinden uzun süredir görülmeyen IP'leri siler.
// Bu süre sonunda bucket zaten tamamen dolmuştur; silmek davranışı değiştirmez.
func (rl *LoginRateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.window {
			delete(rl.visitors, ip)
		}
	}
}

// ExtractIP, request'ten client IP'sini çıkarır.
// Sıra: X-Forwarded-For (ilk değer) → X-Real-IP → RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage, kalan süreyi okunabilir formata çevirir.
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
