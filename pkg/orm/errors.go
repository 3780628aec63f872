package orm

import "github.com/clipper-video/clipper/pkg/errors"

// 6000 段错误码：数据库相关
var (
	ErrUnsupportedType = errors.New(6001, 500, "unsupported database type", nil)
	ErrConnect         = errors.New(6002, 500, "failed to connect database", nil)
	ErrInvalidConfig   = errors.New(6003, 500, "invalid database config", nil)
)
