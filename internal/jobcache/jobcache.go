// Package jobcache 持久化客户端的当前任务，并按创建时间判断是否仍可恢复
//
// 只保存一条记录，新的 Save 整体覆盖旧记录。过期记录不会被自动删除，
// 只有 IsValid 会报告其已过期。
package jobcache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clipper-video/clipper/pkg/cache"
	"github.com/clipper-video/clipper/pkg/errors"
	"github.com/clipper-video/clipper/pkg/logger"
	"github.com/clipper-video/clipper/utils/datetime"
)

// Cache 当前任务缓存
type Cache struct {
	store  cache.Cache
	log    logger.Logger
	key    string
	maxAge time.Duration
	now    func() time.Time
}

// New 创建当前任务缓存，store 为底层键值存储
func New(store cache.Cache, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		log:    logger.NewNop(),
		key:    DefaultKey,
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("component", "jobcache"))
	return c
}

// Key 返回存储键
func (c *Cache) Key() string {
	return c.key
}

// MaxAge 返回新鲜度窗口
func (c *Cache) MaxAge() time.Duration {
	return c.maxAge
}

// Save 保存任务，只保留 id/access_token/status/progress/created_at 五个字段
// job 可以是 Record 或任意可 JSON 序列化的对象
func (c *Cache) Save(ctx context.Context, job any) error {
	rec, err := project(job)
	if err != nil {
		return ErrInvalidJob.WithError(err)
	}

	if err := c.store.Set(ctx, c.key, rec, cache.NoExpiration); err != nil {
		return fmt.Errorf("%w: save: %w", ErrStorage, err)
	}

	c.log.DebugContext(ctx, "current job saved",
		zap.String("job_id", rec.ID.String()),
		zap.String("status", rec.Status),
	)
	return nil
}

// Get 读取任务记录
// 无记录、存储内容不是合法 JSON 或不是对象时返回 (nil, nil)
// 字段类型不符不影响读取
func (c *Cache) Get(ctx context.Context) (*Record, error) {
	rec, ok, err := cache.Lookup[Record](ctx, c.store, c.key)
	switch {
	case err == nil && !ok:
		return nil, nil
	case err == nil:
		return &rec, nil
	case errors.Is(err, cache.ErrCacheSerialization):
		c.log.WarnContext(ctx, "discarding unreadable current job", zap.Error(err))
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: get: %w", ErrStorage, err)
	}
}

// Clear 删除任务记录，记录不存在时不报错
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrStorage, err)
	}
	c.log.DebugContext(ctx, "current job cleared")
	return nil
}

// IsValid 判断记录是否仍在新鲜度窗口内
//
//	rec 为 nil                 -> false
//	created_at 缺失或无法解析   -> true（兼容旧记录）
//	now - created_at < maxAge  -> true
//	否则                        -> false
func (c *Cache) IsValid(rec *Record) bool {
	if rec == nil {
		return false
	}
	created, ok := createdAt(rec)
	if !ok {
		return true
	}
	return c.now().Sub(created) < c.maxAge
}

// ExpiresAt 返回记录的过期时间，created_at 缺失或无法解析时 ok 为 false
func (c *Cache) ExpiresAt(rec *Record) (t time.Time, ok bool) {
	if rec == nil {
		return time.Time{}, false
	}
	created, ok := createdAt(rec)
	if !ok {
		return time.Time{}, false
	}
	return created.Add(c.maxAge), true
}

// Current 读取仍然有效的记录，过期记录返回 nil 但保留在存储中
func (c *Cache) Current(ctx context.Context) (*Record, error) {
	rec, err := c.Get(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	if !c.IsValid(rec) {
		c.log.InfoContext(ctx, "current job is stale",
			zap.String("job_id", rec.ID.String()),
			zap.String("created_at", rec.CreatedAt),
		)
		return nil, nil
	}
	return rec, nil
}

func createdAt(rec *Record) (time.Time, bool) {
	if rec.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := datetime.Parse(rec.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
