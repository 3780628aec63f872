package logger

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Format 输出格式
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

func (f Format) IsValid() bool {
	return f == JSONFormat || f == ConsoleFormat
}

// Config 日志配置
//
// 未配置文件时写 stderr，配置文件后只写文件，Console 为 true 时两者都写。
// Output 非 nil 时替代 stderr，供测试捕获输出。
type Config struct {
	Level   Level
	Format  Format // 默认 json
	Output  io.Writer
	Console bool
	File    *FileConfig

	Sample     bool // 每秒同一消息超过 100 条后每 100 条记 1 条
	Caller     bool
	Stacktrace bool // Error 及以上附带堆栈
}

// FileConfig 日志文件，按大小轮转
type FileConfig struct {
	Path       string
	MaxSizeMB  int // 默认 100
	MaxBackups int // 默认 10
	MaxAgeDays int // 默认 30
	Compress   bool
}

func (f FileConfig) writer() *lumberjack.Logger {
	w := &lumberjack.Logger{
		Filename:   f.Path,
		MaxSize:    f.MaxSizeMB,
		MaxBackups: f.MaxBackups,
		MaxAge:     f.MaxAgeDays,
		LocalTime:  true,
		Compress:   f.Compress,
	}
	if w.MaxSize <= 0 {
		w.MaxSize = 100
	}
	if w.MaxBackups <= 0 {
		w.MaxBackups = 10
	}
	if w.MaxAge <= 0 {
		w.MaxAge = 30
	}
	return w
}
