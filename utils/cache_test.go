package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	t.Run("Set then Get", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Set("k", []byte("v"), time.Minute)

		got, ok := cache.Get("k")
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("Missing key", func(t *testing.T) {
		cache := NewMemoryCache()
		_, ok := cache.Get("nope")
		assert.False(t, ok)
	})

	t.Run("Expired entries are invisible", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Set("k", []byte("v"), -time.Second)

		_, ok := cache.Get("k")
		assert.False(t, ok)
	})

	t.Run("Delete removes the entry", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Set("k", []byte("v"), time.Minute)
		cache.Delete("k")

		_, ok := cache.Get("k")
		assert.False(t, ok)
	})

	t.Run("Cleanup reclaims expired entries only", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Set("dead", []byte("x"), -time.Second)
		cache.Set("live", []byte("y"), time.Minute)

		cache.Cleanup()

		_, ok := cache.Get("dead")
		assert.False(t, ok)
		got, ok := cache.Get("live")
		assert.True(t, ok)
		assert.Equal(t, []byte("y"), got)
	})

	t.Run("Overwrite refreshes value and TTL", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Set("k", []byte("old"), -time.Second)
		cache.Set("k", []byte("new"), time.Minute)

		got, ok := cache.Get("k")
		assert.True(t, ok)
		assert.Equal(t, []byte("new"), got)
	})
}
