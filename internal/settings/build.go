package settings

import (
	"go.uber.org/zap"

	"github.com/clipper-video/clipper/internal/jobcache"
	"github.com/clipper-video/clipper/pkg/cache"
	"github.com/clipper-video/clipper/pkg/config"
	"github.com/clipper-video/clipper/pkg/logger"
	"github.com/clipper-video/clipper/pkg/request"
)

// NewLogger 按日志配置创建 Logger，opts 可覆盖输出（测试用）
func (l LogSettings) NewLogger(opts ...logger.Option) (logger.Logger, error) {
	level, err := logger.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	cfg := &logger.Config{
		Level:      level,
		Format:     logger.Format(l.Format),
		Console:    l.Console,
		Sample:     l.Sampling,
		Stacktrace: l.Stacktrace,
	}
	if l.File != "" {
		cfg.File = &logger.FileConfig{
			Path:       l.File,
			MaxSizeMB:  l.MaxSize,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAge,
			Compress:   l.Compress,
		}
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return logger.New(cfg)
}

// NewStore 按驱动创建底层键值存储
func (c CacheSettings) NewStore() (cache.Cache, error) {
	opts := []cache.Option{cache.WithKeyPrefix(c.KeyPrefix)}
	switch cache.DriverType(c.Driver) {
	case cache.DriverBadger:
		opts = append(opts, cache.WithBadger(&cache.BadgerConfig{Dir: c.Path}))
	case cache.DriverRedis:
		redis := c.Redis
		opts = append(opts, cache.WithRedis(&redis))
	case cache.DriverDatabase:
		db := c.Database
		opts = append(opts, cache.WithDatabase(&cache.DatabaseConfig{ORM: &db}))
	default:
		opts = append(opts, cache.WithMemory(cache.DefaultMemoryConfig()))
	}
	return cache.NewWithOptions(opts...)
}

// NewJobCache 在 store 上创建当前任务缓存
func (c CacheSettings) NewJobCache(store cache.Cache, log logger.Logger) *jobcache.Cache {
	return jobcache.New(store,
		jobcache.WithKey(c.Key),
		jobcache.WithMaxAge(c.MaxAge),
		jobcache.WithLogger(log),
	)
}

// NewClient 创建后端 HTTP 客户端
func (a APISettings) NewClient(log logger.Logger, tracing bool) *request.Client {
	opts := []request.Option{
		request.WithBaseURL(a.BaseURL),
		request.WithTimeout(a.Timeout),
		request.WithTracing(tracing),
		request.WithHeaders(a.Headers),
		request.WithPool(request.PoolConfig{
			MaxConnsPerHost:    a.MaxConns,
			IdleConnTimeout:    a.IdleConnTimeout,
			InsecureSkipVerify: a.InsecureSkipVerify,
		}),
	}
	if log != nil {
		kv := logger.NewKV(log)
		opts = append(opts, request.WithLogger(kv), request.WithInterceptor(request.NewLoggingInterceptor(kv)))
	}
	if a.Retry > 0 {
		retry := request.DefaultRetryConfig()
		retry.MaxAttempts = a.Retry
		opts = append(opts, request.WithRetry(retry))
	}
	if a.Token != "" {
		token := a.Token
		opts = append(opts, request.WithInterceptor(request.NewAuthInterceptor(func() string { return token })))
	}
	return request.New(opts...)
}

// ReloadLogLevel 重新解析配置并应用新的日志级别，供配置文件变更回调使用
func ReloadLogLevel(cfg *config.Config, log logger.Logger) error {
	s, err := Decode(cfg)
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(s.Log.Level)
	if err != nil {
		return err
	}
	if log.Level() != level {
		log.SetLevel(level)
		log.Info("log level changed", zap.String("level", level.String()))
	}
	return nil
}
