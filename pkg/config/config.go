// Package config 是 viper 的并发安全封装
//
// 取值优先级：默认值 < 配置文件 < 环境变量 < Set。
package config

import (
	"errors"
	"io/fs"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config 配置管理器
type Config struct {
	mu    sync.RWMutex
	viper *viper.Viper
	src   source

	onChange func()
	watching bool
}

// source 配置来源，由 Option 填写
type source struct {
	file     string // 完整路径，优先于按名称查找
	name     string
	typ      string
	paths    []string
	optional bool // 按名称找不到文件时不报错

	defaults    map[string]any
	envPrefix   string
	envReplacer *strings.Replacer
}

func New(opts ...Option) *Config {
	c := &Config{viper: viper.New()}
	for _, opt := range opts {
		opt(&c.src, c)
	}
	return c
}

// Load 依次应用默认值、环境变量与配置文件
// 未指定文件且未指定名称时只使用默认值与环境变量
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, src := c.viper, c.src
	for k, val := range src.defaults {
		v.SetDefault(k, val)
	}
	if src.envPrefix != "" {
		v.SetEnvPrefix(src.envPrefix)
		v.AutomaticEnv()
	}
	if src.envReplacer != nil {
		v.SetEnvKeyReplacer(src.envReplacer)
	}

	switch {
	case src.file != "":
		v.SetConfigFile(src.file)
	case src.name != "":
		v.SetConfigName(src.name)
		if src.typ != "" {
			v.SetConfigType(src.typ)
		}
		for _, p := range src.paths {
			v.AddConfigPath(p)
		}
	default:
		return nil
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &notFound) && src.optional:
		return nil
	case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
		return ErrConfigNotFound.WithError(err)
	default:
		return ErrConfigReadFailed.WithError(err)
	}
}

// Set 覆盖配置值，优先级最高
func (c *Config) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viper.Set(key, value)
}

// Unmarshal 按 mapstructure 标签解码全部配置
func (c *Config) Unmarshal(out any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viper.Unmarshal(out)
}

// ConfigFileUsed 实际读取的配置文件，未读取时为空
func (c *Config) ConfigFileUsed() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viper.ConfigFileUsed()
}
