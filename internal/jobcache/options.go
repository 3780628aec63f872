package jobcache

import (
	"time"

	"github.com/clipper-video/clipper/pkg/logger"
)

const (
	// DefaultKey 存储键
	DefaultKey = "current_job"
	// DefaultMaxAge 新鲜度窗口
	DefaultMaxAge = 24 * time.Hour
)

// Option 配置选项
type Option func(*Cache)

// WithKey 设置存储键
func WithKey(key string) Option {
	return func(c *Cache) {
		if key != "" {
			c.key = key
		}
	}
}

// WithMaxAge 设置新鲜度窗口
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// WithClock 设置时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger 设置日志器
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}
