package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache_SetGetDelete(t *testing.T) {
	c := New[string, int](time.Minute, 100)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestTTLCache_DeleteFunc(t *testing.T) {
	c := New[string, bool](time.Minute, 100)
	c.Set("user:1", true)
	c.Set("user:2", true)
	c.Set("other", true)

	c.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, "user:") })

	_, ok := c.Get("user:1")
	assert.False(t, ok)
	_, ok = c.Get("other")
	assert.True(t, ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	c := New[string, int](50*time.Millisecond, 100)
	c.Set("a", 1)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
