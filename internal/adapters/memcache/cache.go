// Package memcache is the in-process domain.Cache used when no Redis is configured.
package memcache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/jellydator/ttlcache/v3"

	"flex_reviews/internal/adapters/observability"
)

// Cache stores JSON-encoded values so callers get the same copy semantics as Redis.
type Cache struct{ c *ttlcache.Cache[string, []byte] }

func New(defaultTTL time.Duration) *Cache {
	c := ttlcache.New(ttlcache.WithTTL[string, []byte](defaultTTL))
	go c.Start()
	return &Cache{c: c}
}

func (m *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	it := m.c.Get(key)
	if it == nil {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(it.Value(), dst)
}

func (m *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ttl := ttlcache.DefaultTTL
	if ttlSec > 0 {
		ttl = time.Duration(ttlSec) * time.Second
	}
	observability.ObserveCache("memory", "set")
	m.c.Set(key, b, ttl)
	return nil
}

func (m *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("memory", "del")
	m.c.Delete(key)
	return nil
}

// Close stops the expiry loop.
func (m *Cache) Close() error {
	m.c.Stop()
	return nil
}
