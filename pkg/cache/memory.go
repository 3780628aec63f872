package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryCache 进程内存储，进程退出即丢失
type memoryCache struct {
	codec
	items *gocache.Cache
}

func newMemoryCache(cfg *Config) (Cache, error) {
	mc := cfg.Memory
	return &memoryCache{
		codec: newCodec(cfg),
		items: gocache.New(mc.DefaultExpiration, mc.CleanupInterval),
	}, nil
}

func (m *memoryCache) Get(_ context.Context, key string, value any) error {
	v, ok := m.items.Get(m.key(key))
	if !ok {
		return ErrCacheNotFound
	}
	data, ok := v.([]byte)
	if !ok {
		return fmt.Errorf("%w: unexpected %T in memory store", ErrCacheSerialization, v)
	}
	return m.decode(data, value)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := m.encode(value)
	if err != nil {
		return err
	}
	d := m.expiry(ttl)
	if d == 0 {
		d = gocache.NoExpiration
	}
	m.items.Set(m.key(key), data, d)
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range m.keys(keys) {
		m.items.Delete(k)
	}
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }

// Close 清空全部条目
func (m *memoryCache) Close() error {
	m.items.Flush()
	return nil
}
