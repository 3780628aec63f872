// Package cache 提供统一的键值存储接口及 memory、redis、badger、database 驱动
package cache

import (
	"context"
	"fmt"
	"time"
)

// NoExpiration 永不过期
const NoExpiration time.Duration = -1

// Cache 键值存储接口，实现可并发使用
// ttl 为 0 时使用 Config.DefaultTTL，为 NoExpiration 时永不过期
type Cache interface {
	Get(ctx context.Context, key string, value any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete 键不存在不报错
	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
	Close() error
}

// Serializer 值的编解码
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// codec 各驱动共用的键前缀、编解码与 TTL 换算
type codec struct {
	ser    Serializer
	prefix string
	ttl    time.Duration
}

func newCodec(cfg *Config) codec {
	return codec{ser: cfg.Serializer, prefix: cfg.KeyPrefix, ttl: cfg.DefaultTTL}
}

func (c codec) key(k string) string { return c.prefix + k }

func (c codec) keys(ks []string) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = c.prefix + k
	}
	return out
}

func (c codec) encode(v any) ([]byte, error) {
	data, err := c.ser.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheSerialization, err)
	}
	return data, nil
}

func (c codec) decode(data []byte, v any) error {
	if err := c.ser.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheSerialization, err)
	}
	return nil
}

// expiry 换算 ttl，结果不大于 0 表示不过期
func (c codec) expiry(ttl time.Duration) time.Duration {
	if ttl == 0 {
		ttl = c.ttl
	}
	return max(ttl, 0)
}

func opError(err error) error {
	return fmt.Errorf("%w: %w", ErrCacheOperation, err)
}
