package config

import "strings"

// Option 配置选项
type Option func(src *source, c *Config)

// WithConfigFile 读取指定路径的配置文件，文件不存在时报错
func WithConfigFile(path string) Option {
	return func(src *source, _ *Config) { src.file = path }
}

// WithConfigName 在 paths 中查找名为 name 的配置文件，typ 为空时按扩展名识别
func WithConfigName(name, typ string, paths ...string) Option {
	return func(src *source, _ *Config) {
		src.name, src.typ, src.paths = name, typ, paths
	}
}

func WithOptional(optional bool) Option {
	return func(src *source, _ *Config) { src.optional = optional }
}

func WithDefaults(defaults map[string]any) Option {
	return func(src *source, _ *Config) { src.defaults = defaults }
}

// WithEnv 以 prefix 读取环境变量，replacer 将配置键映射为变量名，如 "." -> "_"
func WithEnv(prefix string, replacer *strings.Replacer) Option {
	return func(src *source, _ *Config) {
		src.envPrefix, src.envReplacer = prefix, replacer
	}
}

// WithOnChange 监控期间配置文件写入后调用 fn
func WithOnChange(fn func()) Option {
	return func(_ *source, c *Config) { c.onChange = fn }
}
