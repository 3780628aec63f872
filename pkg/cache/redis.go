package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache 共享 Redis 存储，连通性由调用方 Ping 检查
type redisCache struct {
	codec
	rdb redis.UniversalClient
}

func newRedisCache(cfg *Config) (Cache, error) {
	return &redisCache{codec: newCodec(cfg), rdb: newRedisClient(cfg.Redis)}, nil
}

// newRedisClient 按 Mode 选择客户端类型
func newRedisClient(rc *RedisConfig) redis.UniversalClient {
	opts := &redis.UniversalOptions{
		Addrs:        rc.Addrs,
		MasterName:   rc.MasterName,
		Username:     rc.Username,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		MaxRetries:   rc.MaxRetries,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	}
	switch rc.Mode {
	case RedisCluster:
		return redis.NewClusterClient(opts.Cluster())
	case RedisSentinel:
		return redis.NewFailoverClient(opts.Failover())
	default:
		opts.Addrs = []string{rc.Addr}
		return redis.NewClient(opts.Simple())
	}
}

func (r *redisCache) Get(ctx context.Context, key string, value any) error {
	data, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheNotFound
	}
	if err != nil {
		return opError(err)
	}
	return r.decode(data, value)
}

// Set expiry 为 0 时写入永久键，不使用 KEEPTTL
func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := r.encode(value)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(key), data, r.expiry(ttl)).Err(); err != nil {
		return opError(err)
	}
	return nil
}

func (r *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.rdb.Del(ctx, r.keys(keys)...).Err(); err != nil {
		return opError(err)
	}
	return nil
}

func (r *redisCache) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheConnection, err)
	}
	return nil
}

func (r *redisCache) Close() error {
	if err := r.rdb.Close(); err != nil {
		return opError(err)
	}
	return nil
}
