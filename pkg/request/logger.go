package request

import "context"

// Logger 客户端使用的最小日志接口，参数为 key-value 交替
// *logger.KV 满足该接口
type Logger interface {
	DebugContext(ctx context.Context, msg string, keysAndValues ...any)
	ErrorContext(ctx context.Context, msg string, keysAndValues ...any)
}
