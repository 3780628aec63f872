package tracing

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// installed 最近一次安装的全局 TracerProvider
var installed struct {
	sync.Mutex
	tp *sdktrace.TracerProvider
}

// NewTracerProvider 按配置创建 TracerProvider，安装为全局并启用 W3C 上下文传播
// 未启用时照常创建 span 但丢弃导出
func NewTracerProvider(cfg *Config) (*sdktrace.TracerProvider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var exporter sdktrace.SpanExporter = discard{}
	if cfg.Enabled {
		var err error
		if exporter, err = newExporter(context.Background(), cfg); err != nil {
			return nil, fmt.Errorf("%w: %s exporter: %w", ErrInvalidConfig, cfg.ExporterType, err)
		}
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: resource: %w", ErrInvalidConfig, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(newSampler(cfg)),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(cfg.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(cfg.MaxExportBatchSize),
			sdktrace.WithMaxQueueSize(cfg.MaxQueueSize),
		),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	installed.Lock()
	installed.tp = tp
	installed.Unlock()
	return tp, nil
}

// newResource 服务信息与自定义属性，OTEL_RESOURCE_ATTRIBUTES 中的同名键优先
func newResource(cfg *Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}
	for _, k := range slices.Sorted(maps.Keys(cfg.ResourceAttributes)) {
		attrs = append(attrs, attribute.String(k, cfg.ResourceAttributes[k]))
	}

	return resource.New(context.Background(),
		resource.WithAttributes(attrs...),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
}

// Shutdown 导出剩余 span 并关闭全局 TracerProvider，未安装时直接返回
func Shutdown(ctx context.Context) error {
	installed.Lock()
	tp := installed.tp
	installed.tp = nil
	installed.Unlock()

	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

func current() *sdktrace.TracerProvider {
	installed.Lock()
	defer installed.Unlock()
	return installed.tp
}
