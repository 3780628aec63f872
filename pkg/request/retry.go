package request

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryConfig 重试配置，零值字段使用默认值
type RetryConfig struct {
	MaxAttempts  int           // 首次之外的重试次数，默认 3
	InitialDelay time.Duration // 默认 100ms
	MaxDelay     time.Duration // 默认 5s
	Multiplier   float64       // 默认 2

	// RetryIf 判断是否重试，status 为 0 表示没有收到响应
	// 默认网络错误与 5xx 重试，调用方取消不重试
	RetryIf func(status int, err error) bool
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() *RetryConfig {
	rc := RetryConfig{}.withDefaults()
	return &rc
}

func (rc RetryConfig) withDefaults() RetryConfig {
	if rc.MaxAttempts <= 0 {
		rc.MaxAttempts = 3
	}
	if rc.InitialDelay <= 0 {
		rc.InitialDelay = 100 * time.Millisecond
	}
	if rc.MaxDelay <= 0 {
		rc.MaxDelay = 5 * time.Second
	}
	if rc.Multiplier < 1 {
		rc.Multiplier = 2
	}
	if rc.RetryIf == nil {
		rc.RetryIf = retryTransient
	}
	return rc
}

func retryTransient(status int, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	return status >= http.StatusInternalServerError
}

// delay 第 n 次重试前的等待时间，在指数退避值的 [1/2, 1] 区间内随机
func (rc RetryConfig) delay(n int) time.Duration {
	d := float64(rc.InitialDelay)
	for range n {
		d *= rc.Multiplier
		if d >= float64(rc.MaxDelay) {
			break
		}
	}
	d = min(d, float64(rc.MaxDelay))
	return time.Duration(d/2 + rand.Float64()*d/2)
}
