// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Karşılaştırma string yerine errors.Is ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import (
	"errors"
	"time"
)

// Domain-level error'lar. Handler katmanı bunları HTTP status code'larına map'ler.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")
	ErrBadRequest      = errors.New("bad request")
	ErrInternal        = errors.New("internal error")
	ErrTooManyRequests = errors.New("too many requests")

	// ErrBanned, aktif ban'ı olan kullanıcının kimlik doğrulaması reddedildiğinde döner.
	ErrBanned = errors.New("account is banned")
)

// BannedError, ErrBanned'ı ban bitiş tarihiyle birlikte taşır.
// errors.Is(err, ErrBanned) true döner; detay için errors.As kullanılır.
type BannedError struct {
	EndDate *time.Time // nil → kalıcı
}

func (e *BannedError) Error() string { return ErrBanned.Error() }

func (e *BannedError) Unwrap() error { return ErrBanned }
