package config

import "github.com/clipper-video/clipper/pkg/errors"

// 5000 段错误码：配置相关
var (
	// ErrConfigNotFound 配置文件未找到
	ErrConfigNotFound = errors.New(5001, 500, "config file not found", nil)
	// ErrConfigReadFailed 配置读取失败
	ErrConfigReadFailed = errors.New(5002, 500, "config read failed", nil)
)
