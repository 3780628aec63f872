package request

import (
	"maps"
	"time"
)

// Config HTTP 客户端配置
type Config struct {
	BaseURL       string
	Timeout       time.Duration     // 单次请求超时，下载不受此限制
	Headers       map[string]string // 每个请求都带上，请求级同名头优先
	Pool          PoolConfig
	Retry         *RetryConfig // nil 不重试
	Interceptors  []Interceptor
	Logger        Logger // nil 不记录
	EnableTracing bool
}

// PoolConfig 连接池与 TLS 配置，零值沿用 http.DefaultTransport
type PoolConfig struct {
	MaxConnsPerHost    int
	IdleConnTimeout    time.Duration
	InsecureSkipVerify bool // 仅用于自签名证书的测试环境
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Headers: make(map[string]string),
	}
}

// Option 配置选项函数
type Option func(*Config)

func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithHeaders 追加全局请求头
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(headers))
		}
		maps.Copy(c.Headers, headers)
	}
}

func WithPool(pool PoolConfig) Option {
	return func(c *Config) { c.Pool = pool }
}

func WithRetry(cfg *RetryConfig) Option {
	return func(c *Config) { c.Retry = cfg }
}

// WithInterceptor 追加拦截器，按添加顺序执行
func WithInterceptor(i Interceptor) Option {
	return func(c *Config) { c.Interceptors = append(c.Interceptors, i) }
}

func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithTracing 为每个请求创建客户端 span 并传播 trace 上下文
func WithTracing(enable bool) Option {
	return func(c *Config) { c.EnableTracing = enable }
}
