package cache

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracedCache 每次操作一个 client span，未命中不算错误
type tracedCache struct {
	Cache
	tracer trace.Tracer
}

// NewTracing 用全局 TracerProvider 包装 c
func NewTracing(c Cache) Cache {
	return &tracedCache{Cache: c, tracer: otel.Tracer("clipper.cache")}
}

func (t *tracedCache) span(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("cache.operation", op))...),
	)
	start := time.Now()
	return ctx, func(err error) {
		span.SetAttributes(attribute.Int64("cache.duration_ms", time.Since(start).Milliseconds()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

func (t *tracedCache) Get(ctx context.Context, key string, value any) error {
	ctx, end := t.span(ctx, "cache.Get", attribute.String("cache.key", key))
	err := t.Cache.Get(ctx, key, value)
	switch {
	case err == nil, errors.Is(err, ErrCacheNotFound):
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("cache.hit", err == nil))
		end(nil)
	default:
		end(err)
	}
	return err
}

func (t *tracedCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	attrs := []attribute.KeyValue{attribute.String("cache.key", key)}
	if ttl > 0 {
		attrs = append(attrs, attribute.Float64("cache.ttl_seconds", ttl.Seconds()))
	}
	ctx, end := t.span(ctx, "cache.Set", attrs...)
	err := t.Cache.Set(ctx, key, value, ttl)
	end(err)
	return err
}

func (t *tracedCache) Delete(ctx context.Context, keys ...string) error {
	ctx, end := t.span(ctx, "cache.Delete", attribute.StringSlice("cache.keys", keys))
	err := t.Cache.Delete(ctx, keys...)
	end(err)
	return err
}

func (t *tracedCache) Ping(ctx context.Context) error {
	ctx, end := t.span(ctx, "cache.Ping")
	err := t.Cache.Ping(ctx)
	end(err)
	return err
}
