package tracing

import (
	"fmt"
	"io"
	"time"

	"github.com/clipper-video/clipper/pkg/errors"
)

// ErrInvalidConfig 追踪配置错误
var ErrInvalidConfig = errors.New(7001, 500, "invalid tracing config", nil)

// Config 链路追踪配置，Enabled 为 false 时 span 不导出
type Config struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	Environment    string `mapstructure:"environment"`

	// ExporterType otlp、stdout 或 noop
	ExporterType     string            `mapstructure:"exporter"`
	ExporterEndpoint string            `mapstructure:"endpoint"` // OTLP host:port
	ExporterHeaders  map[string]string `mapstructure:"headers"`
	Insecure         bool              `mapstructure:"insecure"`

	// SamplingType 见 samplers，SamplingRate 取值 [0, 1]
	SamplingType string  `mapstructure:"sampling_type"`
	SamplingRate float64 `mapstructure:"sampling_rate"`

	ResourceAttributes map[string]string `mapstructure:"resource_attributes"`

	BatchTimeout       time.Duration `mapstructure:"batch_timeout"`
	MaxExportBatchSize int           `mapstructure:"max_export_batch_size"`
	MaxQueueSize       int           `mapstructure:"max_queue_size"`

	// Writer stdout 导出器的目标，nil 为标准输出
	Writer io.Writer `mapstructure:"-"`
}

// DefaultConfig 关闭状态，启用后默认输出到 stdout 并全量采样
func DefaultConfig() *Config {
	return &Config{
		ServiceName:        "clipper",
		ServiceVersion:     "dev",
		Environment:        "development",
		ExporterType:       "stdout",
		SamplingType:       "parent_based",
		SamplingRate:       1,
		ResourceAttributes: map[string]string{},
		BatchTimeout:       5 * time.Second,
		MaxExportBatchSize: 512,
		MaxQueueSize:       2048,
	}
}

// Validate 检查服务名、采样率与导出器类型
func (c *Config) Validate() error {
	switch {
	case c.ServiceName == "":
		return fmt.Errorf("%w: service name is required", ErrInvalidConfig)
	case c.SamplingRate < 0 || c.SamplingRate > 1:
		return fmt.Errorf("%w: sampling rate must be within [0, 1], got %v", ErrInvalidConfig, c.SamplingRate)
	}
	switch c.ExporterType {
	case "otlp", "stdout", "noop":
		return nil
	}
	return fmt.Errorf("%w: invalid exporter type %q", ErrInvalidConfig, c.ExporterType)
}
