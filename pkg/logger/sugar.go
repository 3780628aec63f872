package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// KV 将 Logger 适配为 key-value 风格（满足 request.Logger 等最小接口）
type KV struct {
	l Logger
}

// NewKV 创建 key-value 风格适配器
func NewKV(l Logger) *KV {
	return &KV{l: l}
}

// DebugContext 记录 Debug 日志
func (k *KV) DebugContext(ctx context.Context, msg string, keysAndValues ...any) {
	k.l.DebugContext(ctx, msg, toFields(keysAndValues)...)
}

// ErrorContext 记录 Error 日志
func (k *KV) ErrorContext(ctx context.Context, msg string, keysAndValues ...any) {
	k.l.ErrorContext(ctx, msg, toFields(keysAndValues)...)
}

// toFields 成对转换，落单的值以 !BADKEY 记录
func toFields(kv []any) []zap.Field {
	fields := make([]zap.Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			fields = append(fields, zap.Any("!BADKEY", kv[i]))
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if err, isErr := kv[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}
