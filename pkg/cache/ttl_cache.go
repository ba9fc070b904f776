// Package cache: Generic in-memory TTL cache.
//
// TTLCache, otter üzerinde ince bir sarmalayıcıdır: her entry yazıldıktan
// ttl süre sonra okunamaz hale gelir, boyut üst sınırı aşılırsa otter
// en az kullanılan entry'leri atar. Temizlik otter'ın kendi içindedir;
// ayrı bir cleanup goroutine'i yoktur.
//
// Kullanım:
//
//	c := cache.New[string, BanStatus](30*time.Second, 10_000)
//	c.Set(userID, status)
//	status, ok := c.Get(userID)
package cache

import (
	"time"

	"github.com/maypok86/otter/v2"
)

// TTLCache, thread-safe generic TTL cache.
type TTLCache[K comparable, V any] struct {
	inner *otter.Cache[K, V]
}

// New, ttl süreli ve en fazla maxSize entry tutan bir cache oluşturur.
func New[K comparable, V any](ttl time.Duration, maxSize int) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		inner: otter.Must(&otter.Options[K, V]{
			MaximumSize:      maxSize,
			ExpiryCalculator: otter.ExpiryWriting[K, V](ttl),
		}),
	}
}

// Get, süresi dolmamış değeri döner. Yoksa (zero, false).
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	return c.inner.GetIfPresent(key)
}

// Set, değeri yazar ve TTL'i yeniden başlatır.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.inner.Set(key, value)
}

// Delete, tek bir key'i invalidate eder.
func (c *TTLCache[K, V]) Delete(key K) {
	c.inner.Invalidate(key)
}

// DeleteFunc, predicate'i sağlayan tüm key'leri invalidate eder.
func (c *TTLCache[K, V]) DeleteFunc(predicate func(key K) bool) {
	for key := range c.inner.All() {
		if predicate(key) {
			c.inner.Invalidate(key)
		}
	}
}

// Clear, tüm cache'i boşaltır.
func (c *TTLCache[K, V]) Clear() {
	c.inner.InvalidateAll()
}
