package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 结构化日志，Context 版本附带当前 span 的 trace_id 与 span_id
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)

	DebugContext(ctx context.Context, msg string, fields ...zap.Field)
	InfoContext(ctx context.Context, msg string, fields ...zap.Field)
	WarnContext(ctx context.Context, msg string, fields ...zap.Field)
	ErrorContext(ctx context.Context, msg string, fields ...zap.Field)

	// With 子 Logger 与父共享级别
	With(fields ...zap.Field) Logger
	Sync() error
	SetLevel(level Level)
	Level() Level
}

type logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
}

// New 按配置创建 Logger，config 为 nil 时输出 json 到 stderr
func New(config *Config) (Logger, error) {
	var cfg Config
	if config != nil {
		cfg = *config
	}
	if cfg.Format == "" {
		cfg.Format = JSONFormat
	}
	if !cfg.Format.IsValid() {
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	level := zap.NewAtomicLevelAt(cfg.Level.zap())
	core := zapcore.NewCore(newEncoder(cfg.Format), newSink(&cfg), level)
	if cfg.Sample {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}

	var opts []zap.Option
	if cfg.Caller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(2))
	}
	if cfg.Stacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return &logger{zap: zap.New(core, opts...), level: level}, nil
}

// NewWithOptions 在默认配置上应用 opts 创建 Logger
func NewWithOptions(opts ...Option) (Logger, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(&cfg)
}

// NewNop 不输出任何内容的 Logger
func NewNop() Logger {
	return &logger{zap: zap.NewNop(), level: zap.NewAtomicLevel()}
}

func newEncoder(format Format) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder
	if format == ConsoleFormat {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

// newSink stdout 留给命令结果，终端日志只写 stderr
func newSink(cfg *Config) zapcore.WriteSyncer {
	var sinks []zapcore.WriteSyncer
	if cfg.File == nil || cfg.Console {
		if cfg.Output != nil {
			sinks = append(sinks, zapcore.AddSync(cfg.Output))
		} else {
			sinks = append(sinks, zapcore.Lock(os.Stderr))
		}
	}
	if cfg.File != nil {
		sinks = append(sinks, zapcore.AddSync(cfg.File.writer()))
	}
	return zapcore.NewMultiWriteSyncer(sinks...)
}

// write 经 Check 过滤级别后输出，调用栈深度固定为 2
func (l *logger) write(ctx context.Context, lvl zapcore.Level, msg string, fields []zap.Field) {
	ce := l.zap.Check(lvl, msg)
	if ce == nil {
		return
	}
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append([]zap.Field{
				zap.Stringer("trace_id", sc.TraceID()),
				zap.Stringer("span_id", sc.SpanID()),
			}, fields...)
		}
	}
	ce.Write(fields...)
}

func (l *logger) Debug(msg string, fields ...zap.Field) { l.write(context.Background(), zap.DebugLevel, msg, fields) }
func (l *logger) Info(msg string, fields ...zap.Field)  { l.write(context.Background(), zap.InfoLevel, msg, fields) }
func (l *logger) Warn(msg string, fields ...zap.Field)  { l.write(context.Background(), zap.WarnLevel, msg, fields) }
func (l *logger) Error(msg string, fields ...zap.Field) { l.write(context.Background(), zap.ErrorLevel, msg, fields) }

func (l *logger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.write(ctx, zap.DebugLevel, msg, fields)
}

func (l *logger) InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.write(ctx, zap.InfoLevel, msg, fields)
}

func (l *logger) WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.write(ctx, zap.WarnLevel, msg, fields)
}

func (l *logger) ErrorContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.write(ctx, zap.ErrorLevel, msg, fields)
}

func (l *logger) With(fields ...zap.Field) Logger {
	return &logger{zap: l.zap.With(fields...), level: l.level}
}

func (l *logger) Sync() error { return l.zap.Sync() }

// SetLevel 运行中调整级别，对 With 派生的 Logger 同样生效
func (l *logger) SetLevel(level Level) { l.level.SetLevel(level.zap()) }

func (l *logger) Level() Level { return Level(l.level.Level()) }
