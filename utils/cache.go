package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache is the injectable TTL store used for enrichment lookups. The
// in-memory implementation serves single-instance deployments; the Redis
// implementation is for multi-instance setups where a process-local map
// would go incoherent across replicas.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	Cleanup()
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a mutex-guarded map with per-entry expiry
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem)}
}

func (m *MemoryCache) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

func (m *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	m.items[key] = memoryItem{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

func (m *MemoryCache) Delete(key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

// Cleanup drops expired entries. Expired keys are already invisible to
// Get; this just reclaims memory.
func (m *MemoryCache) Cleanup() {
	now := time.Now()
	m.mu.Lock()
	for key, item := range m.items {
		if now.After(item.expiresAt) {
			delete(m.items, key)
		}
	}
	m.mu.Unlock()
}

// Janitor runs Cleanup on an interval until the context is canceled
func (m *MemoryCache) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Cleanup()
		}
	}
}

// RedisCache implements Cache on a shared Redis instance
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (r *RedisCache) Get(key string) ([]byte, bool) {
	val, err := r.client.Get(context.Background(), key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *RedisCache) Set(key string, value []byte, ttl time.Duration) {
	r.client.Set(context.Background(), key, value, ttl)
}

func (r *RedisCache) Delete(key string) {
	r.client.Del(context.Background(), key)
}

// Cleanup is a no-op: Redis expires keys on its own.
func (r *RedisCache) Cleanup() {}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
