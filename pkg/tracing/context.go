package tracing

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName 业务 span 使用的 tracer 名称
const TracerName = "clipper"

// StartSpan 用全局 TracerProvider 启动 span，未初始化追踪时为 no-op
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, opts...)
}

// RecordError 记录错误并将 span 标记为失败，err 为 nil 时不做任何事
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func SetAttributes(span trace.Span, attrs map[string]any) {
	if kvs := toAttributes(attrs); len(kvs) > 0 {
		span.SetAttributes(kvs...)
	}
}

func AddEvent(span trace.Span, name string, attrs map[string]any) {
	span.AddEvent(name, trace.WithAttributes(toAttributes(attrs)...))
}

// toAttributes 按键排序，无法识别的类型记为字符串
func toAttributes(attrs map[string]any) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		var kv attribute.KeyValue
		switch v := attrs[k].(type) {
		case string:
			kv = attribute.String(k, v)
		case bool:
			kv = attribute.Bool(k, v)
		case int:
			kv = attribute.Int(k, v)
		case int64:
			kv = attribute.Int64(k, v)
		case float64:
			kv = attribute.Float64(k, v)
		case []string:
			kv = attribute.StringSlice(k, v)
		case fmt.Stringer:
			kv = attribute.Stringer(k, v)
		default:
			kv = attribute.String(k, fmt.Sprint(v))
		}
		kvs = append(kvs, kv)
	}
	return kvs
}
