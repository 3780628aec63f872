package tracker

import "github.com/clipper-video/clipper/pkg/errors"

// 3200 段错误码：任务跟踪
var (
	// ErrNoCurrentJob 没有记住的任务
	ErrNoCurrentJob = errors.New(3201, 404, "no current job", nil)
	// ErrJobGone 后端已不存在该任务，本地记录已清除
	ErrJobGone = errors.New(3202, 410, "job no longer exists", nil)
	// ErrPollFailed 连续轮询失败
	ErrPollFailed = errors.New(3203, 502, "polling job failed", nil)
)
