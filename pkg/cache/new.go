package cache

import "fmt"

var drivers = map[DriverType]func(*Config) (Cache, error){
	DriverMemory:   newMemoryCache,
	DriverRedis:    newRedisCache,
	DriverBadger:   newBadgerCache,
	DriverDatabase: newDatabaseCache,
}

// New 按配置创建存储，cfg 为 nil 时使用 DefaultConfig
func New(cfg *Config) (Cache, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Serializer == nil {
		cfg.Serializer = JSONSerializer{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	open, ok := drivers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported driver %q", ErrCacheInvalidConfig, cfg.Driver)
	}
	return open(cfg)
}

// NewWithOptions 在 DefaultConfig 上应用 opts 后创建存储
func NewWithOptions(opts ...Option) (Cache, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return New(cfg)
}
