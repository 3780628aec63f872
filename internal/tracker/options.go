package tracker

import (
	"time"

	"github.com/clipper-video/clipper/pkg/logger"
)

const (
	// DefaultPollInterval 轮询间隔
	DefaultPollInterval = 2 * time.Second
	// DefaultMaxPollFailures 连续失败次数上限
	DefaultMaxPollFailures = 3
)

// Option 配置选项
type Option func(*Tracker)

// WithLogger 设置日志器
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// WithPollInterval 设置默认轮询间隔
func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithMaxPollFailures 设置轮询连续失败上限
func WithMaxPollFailures(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.maxFailures = n
		}
	}
}
