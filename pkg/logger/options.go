package logger

import "io"

// Option 配置选项函数
type Option func(*Config)

func WithLevel(level Level) Option {
	return func(c *Config) { c.Level = level }
}

func WithFormat(format Format) Option {
	return func(c *Config) { c.Format = format }
}

// WithOutput 输出到 w 而不是 stderr
func WithOutput(w io.Writer) Option {
	return func(c *Config) { c.Output = w }
}
