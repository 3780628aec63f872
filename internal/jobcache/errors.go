package jobcache

import (
	stderrors "errors"

	"github.com/clipper-video/clipper/pkg/errors"
)

var errNilJob = stderrors.New("job is nil")

// 3100 段错误码：当前任务缓存
var (
	// ErrInvalidJob 任务对象无法投影为记录
	ErrInvalidJob = errors.New(3101, 400, "invalid job", nil)
	// ErrStorage 底层存储失败
	ErrStorage = errors.New(3102, 500, "job cache storage failed", nil)
)
