package cache

import (
	"fmt"
	"time"

	"github.com/clipper-video/clipper/pkg/orm"
)

// DriverType 存储驱动
type DriverType string

const (
	DriverRedis    DriverType = "redis"
	DriverMemory   DriverType = "memory"
	DriverBadger   DriverType = "badger"
	DriverDatabase DriverType = "database"
)

// RedisMode Redis 部署方式
type RedisMode string

const (
	RedisStandalone RedisMode = "standalone"
	RedisCluster    RedisMode = "cluster"
	RedisSentinel   RedisMode = "sentinel"
)

// Config 存储配置，只有 Driver 对应的子配置生效
type Config struct {
	Driver     DriverType
	Serializer Serializer
	KeyPrefix  string
	DefaultTTL time.Duration

	Memory   *MemoryConfig
	Redis    *RedisConfig
	Badger   *BadgerConfig
	Database *DatabaseConfig
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Mode         RedisMode     `mapstructure:"mode"`
	Addr         string        `mapstructure:"addr"`  // standalone
	Addrs        []string      `mapstructure:"addrs"` // cluster 节点或 sentinel 地址
	MasterName   string        `mapstructure:"master_name"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MemoryConfig go-cache 参数
type MemoryConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// BadgerConfig 本地 KV 目录
type BadgerConfig struct {
	Dir        string
	InMemory   bool // 测试用，忽略 Dir
	SyncWrites bool
}

// DatabaseConfig 数据库单表存储
type DatabaseConfig struct {
	ORM   *orm.Config
	Table string // 默认 cache_entries
}

// DefaultConfig 内存驱动，JSON 编码，默认 TTL 10 分钟
func DefaultConfig() *Config {
	return &Config{
		Driver:     DriverMemory,
		Serializer: JSONSerializer{},
		DefaultTTL: 10 * time.Minute,
		Memory:     DefaultMemoryConfig(),
	}
}

// DefaultRedisConfig 本机单节点
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Mode:         RedisStandalone,
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 1,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func DefaultMemoryConfig() *MemoryConfig {
	return &MemoryConfig{
		DefaultExpiration: 10 * time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

// Option 修改 Config
type Option func(*Config)

func WithRedis(rc *RedisConfig) Option {
	return func(c *Config) { c.Driver, c.Redis = DriverRedis, rc }
}

func WithMemory(mc *MemoryConfig) Option {
	return func(c *Config) { c.Driver, c.Memory = DriverMemory, mc }
}

func WithBadger(bc *BadgerConfig) Option {
	return func(c *Config) { c.Driver, c.Badger = DriverBadger, bc }
}

func WithDatabase(dc *DatabaseConfig) Option {
	return func(c *Config) { c.Driver, c.Database = DriverDatabase, dc }
}

// WithKeyPrefix 所有键加上 prefix
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) { c.KeyPrefix = prefix }
}

// Validate 检查 Driver 及其子配置
func (c *Config) Validate() error {
	if c.Serializer == nil {
		return invalid("serializer is required")
	}
	switch c.Driver {
	case DriverMemory:
		if c.Memory == nil {
			return invalid("memory config is required")
		}
		return nil
	case DriverRedis:
		return c.Redis.validate()
	case DriverBadger:
		return c.Badger.validate()
	case DriverDatabase:
		return c.Database.validate()
	}
	return invalid(fmt.Sprintf("invalid driver type %q", c.Driver))
}

func (rc *RedisConfig) validate() error {
	if rc == nil {
		return invalid("redis config is required")
	}
	switch rc.Mode {
	case RedisStandalone, "":
		if rc.Addr == "" {
			return invalid("redis addr is required for standalone mode")
		}
	case RedisCluster:
		if len(rc.Addrs) < 3 {
			return invalid("redis cluster requires at least 3 nodes")
		}
	case RedisSentinel:
		if len(rc.Addrs) == 0 || rc.MasterName == "" {
			return invalid("redis sentinel requires addrs and master_name")
		}
	default:
		return invalid(fmt.Sprintf("invalid redis mode %q", rc.Mode))
	}
	return nil
}

func (bc *BadgerConfig) validate() error {
	switch {
	case bc == nil:
		return invalid("badger config is required")
	case bc.Dir == "" && !bc.InMemory:
		return invalid("badger dir is required")
	}
	return nil
}

func (dc *DatabaseConfig) validate() error {
	switch {
	case dc == nil || dc.ORM == nil:
		return invalid("database config is required")
	case dc.ORM.DSN == "":
		return invalid("database dsn is required")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrCacheInvalidConfig, msg)
}
