// Package settings 定义客户端配置结构，并据此构建日志、存储、HTTP 与追踪组件
package settings

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/clipper-video/clipper/internal/api"
	"github.com/clipper-video/clipper/internal/jobcache"
	"github.com/clipper-video/clipper/pkg/cache"
	"github.com/clipper-video/clipper/pkg/config"
	"github.com/clipper-video/clipper/pkg/errors"
	"github.com/clipper-video/clipper/pkg/logger"
	"github.com/clipper-video/clipper/pkg/orm"
	"github.com/clipper-video/clipper/pkg/tracing"
)

// EnvPrefix 环境变量前缀，如 CLIPPER_API_BASE_URL
const EnvPrefix = "CLIPPER"

// ErrInvalidSettings 配置取值非法
var ErrInvalidSettings = errors.New(5101, 500, "invalid settings", nil)

// Settings 客户端配置
type Settings struct {
	API   APISettings    `mapstructure:"api"`
	Cache CacheSettings  `mapstructure:"cache"`
	Log   LogSettings    `mapstructure:"log"`
	Trace tracing.Config `mapstructure:"trace"`
}

// APISettings 后端连接配置
type APISettings struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   int           `mapstructure:"retry"` // 0 不重试
	Token   string        `mapstructure:"token"` // 账号 Bearer 令牌，可为空

	PollInterval time.Duration `mapstructure:"poll_interval"` // 等待任务时的轮询间隔

	Headers            map[string]string `mapstructure:"headers"`
	MaxConns           int               `mapstructure:"max_conns"`
	IdleConnTimeout    time.Duration     `mapstructure:"idle_conn_timeout"`
	InsecureSkipVerify bool              `mapstructure:"insecure_skip_verify"`
}

// CacheSettings 当前任务存储配置
type CacheSettings struct {
	Driver    string            `mapstructure:"driver"` // memory/badger/redis/database
	Path      string            `mapstructure:"path"`   // badger 数据目录
	Key       string            `mapstructure:"key"`
	MaxAge    time.Duration     `mapstructure:"max_age"`
	KeyPrefix string            `mapstructure:"key_prefix"`
	Redis     cache.RedisConfig `mapstructure:"redis"`
	Database  orm.Config        `mapstructure:"database"`
}

// LogSettings 日志配置
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"` // 非空时按大小轮转写入文件

	MaxSize    int  `mapstructure:"max_size"` // MB
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"` // 天
	Compress   bool `mapstructure:"compress"`
	Console    bool `mapstructure:"console"` // 写文件时同时输出到 stderr
	Sampling   bool `mapstructure:"sampling"`
	Stacktrace bool `mapstructure:"stacktrace"`
}

// DefaultCachePath 默认 badger 数据目录
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".clipper"
	}
	return filepath.Join(dir, "clipper")
}

// Defaults 所有配置键的默认值，环境变量只能覆盖这里出现的键
func Defaults() map[string]any {
	trace := tracing.DefaultConfig()
	redis := cache.DefaultRedisConfig()
	db := orm.DefaultConfig()

	return map[string]any{
		"api.base_url": api.DefaultBaseURL,
		"api.timeout":  "30s",
		"api.retry":    2,
		"api.token":    "",

		"api.poll_interval": "2s",

		"api.headers":              map[string]string{},
		"api.max_conns":            0,
		"api.idle_conn_timeout":    "90s",
		"api.insecure_skip_verify": false,

		"cache.driver":     string(cache.DriverBadger),
		"cache.path":       DefaultCachePath(),
		"cache.key":        jobcache.DefaultKey,
		"cache.max_age":    jobcache.DefaultMaxAge.String(),
		"cache.key_prefix": "",

		"cache.redis.addr":          redis.Addr,
		"cache.redis.addrs":         []string{},
		"cache.redis.mode":          string(redis.Mode),
		"cache.redis.username":      "",
		"cache.redis.password":      "",
		"cache.redis.db":            0,
		"cache.redis.pool_size":     redis.PoolSize,
		"cache.redis.min_idle":      redis.MinIdleConns,
		"cache.redis.max_retries":   redis.MaxRetries,
		"cache.redis.dial_timeout":  redis.DialTimeout.String(),
		"cache.redis.read_timeout":  redis.ReadTimeout.String(),
		"cache.redis.write_timeout": redis.WriteTimeout.String(),
		"cache.redis.master_name":   "",

		"cache.database.type":              string(db.Type),
		"cache.database.dsn":               db.DSN,
		"cache.database.max_idle_conns":    db.MaxIdleConns,
		"cache.database.max_open_conns":    db.MaxOpenConns,
		"cache.database.conn_max_lifetime": db.ConnMaxLifetime.String(),
		"cache.database.log_level":         db.LogLevel,
		"cache.database.slow_threshold":    db.SlowThreshold.String(),
		"cache.database.table_prefix":      "",

		"log.level":  "info",
		"log.format": string(logger.ConsoleFormat),
		"log.file":   "",

		"log.max_size":    100,
		"log.max_backups": 10,
		"log.max_age":     30,
		"log.compress":    false,
		"log.console":     false,
		"log.sampling":    false,
		"log.stacktrace":  false,

		"trace.enabled":         trace.Enabled,
		"trace.service_name":    trace.ServiceName,
		"trace.service_version": trace.ServiceVersion,
		"trace.environment":     trace.Environment,
		"trace.exporter":        trace.ExporterType,
		"trace.endpoint":        "",
		"trace.insecure":        false,
		"trace.sampling_rate":   trace.SamplingRate,
		"trace.sampling_type":   trace.SamplingType,
		"trace.batch_timeout":   trace.BatchTimeout.String(),

		"trace.max_export_batch_size": trace.MaxExportBatchSize,
		"trace.max_queue_size":        trace.MaxQueueSize,
	}
}

// Load 读取配置：默认值 < 配置文件 < CLIPPER_* 环境变量
// file 为空时在当前目录与用户配置目录查找 clipper.yaml，找不到不报错
func Load(file string, opts ...config.Option) (*Settings, *config.Config, error) {
	base := []config.Option{
		config.WithDefaults(Defaults()),
		config.WithEnv(EnvPrefix, strings.NewReplacer(".", "_")),
	}
	if file != "" {
		base = append(base, config.WithConfigFile(file))
	} else {
		paths := []string{"."}
		if dir, err := os.UserConfigDir(); err == nil {
			paths = append(paths, filepath.Join(dir, "clipper"))
		}
		base = append(base,
			config.WithConfigName("clipper", "yaml", paths...),
			config.WithOptional(true),
		)
	}

	cfg := config.New(append(base, opts...)...)
	if err := cfg.Load(); err != nil {
		return nil, nil, err
	}
	s, err := Decode(cfg)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

// LoadEnvFile 将 .env 文件中的变量导入进程环境，已存在的变量不覆盖
// 文件不存在时忽略
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return ErrInvalidSettings.WithError(fmt.Errorf("env file %s: %w", path, err))
	}
	return nil
}

// Decode 从已加载的配置解析并校验 Settings
func Decode(cfg *config.Config) (*Settings, error) {
	var s Settings
	if err := cfg.Unmarshal(&s); err != nil {
		return nil, ErrInvalidSettings.WithError(err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate 校验配置取值
func (s *Settings) Validate() error {
	u, err := url.Parse(s.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q is not an absolute url", ErrInvalidSettings, s.API.BaseURL)
	}
	if s.API.Timeout < 0 || s.API.Retry < 0 {
		return fmt.Errorf("%w: api.timeout and api.retry must not be negative", ErrInvalidSettings)
	}
	if s.API.MaxConns < 0 || s.API.IdleConnTimeout < 0 {
		return fmt.Errorf("%w: api.max_conns and api.idle_conn_timeout must not be negative", ErrInvalidSettings)
	}
	if s.API.PollInterval <= 0 {
		return fmt.Errorf("%w: api.poll_interval must be positive", ErrInvalidSettings)
	}

	switch cache.DriverType(s.Cache.Driver) {
	case cache.DriverMemory, cache.DriverRedis, cache.DriverDatabase:
	case cache.DriverBadger:
		if s.Cache.Path == "" {
			return fmt.Errorf("%w: cache.path is required for badger", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: unknown cache.driver %q", ErrInvalidSettings, s.Cache.Driver)
	}
	if s.Cache.MaxAge <= 0 {
		return fmt.Errorf("%w: cache.max_age must be positive", ErrInvalidSettings)
	}

	if _, err := logger.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidSettings, err)
	}
	if !logger.Format(s.Log.Format).IsValid() {
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalidSettings, s.Log.Format)
	}
	if s.Log.MaxSize < 0 || s.Log.MaxBackups < 0 || s.Log.MaxAge < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidSettings)
	}

	if s.Trace.Enabled {
		if err := s.Trace.Validate(); err != nil {
			return err
		}
	}
	return nil
}
