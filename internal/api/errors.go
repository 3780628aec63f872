package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/clipper-video/clipper/pkg/errors"
	"github.com/clipper-video/clipper/pkg/request"
)

// 2000 段错误码：后端 API 相关
var (
	// ErrInvalidJobID 任务 ID 不是 UUID
	ErrInvalidJobID = errors.New(2001, 400, "invalid job id", nil)
	// ErrInvalidRequest 请求参数未通过本地校验
	ErrInvalidRequest = errors.New(2002, 400, "invalid request", nil)
	// ErrActiveJobLimit 活跃任务数已达上限
	ErrActiveJobLimit = errors.New(2003, 429, "active job limit reached", nil)
	// ErrInvalidToken 任务令牌无效
	ErrInvalidToken = errors.New(2004, 403, "invalid job token", nil)
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string
	Message string
}

// Error 实现 error 接口
func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap 使 errors.Is(err, ErrInvalidRequest) 成立
func (e *FieldError) Unwrap() error {
	return ErrInvalidRequest
}

func fieldError(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ActiveJobLimitError 后端返回 429 时的详情
type ActiveJobLimitError struct {
	Detail           string       `json:"detail"`
	ActiveJobs       int          `json:"active_jobs"`
	MaxActiveJobs    int          `json:"max_active_jobs"`
	ActiveJobDetails []JobSummary `json:"active_job_details"`
}

// Error 实现 error 接口
func (e *ActiveJobLimitError) Error() string {
	return fmt.Sprintf("active job limit reached (%d/%d): %s", e.ActiveJobs, e.MaxActiveJobs, e.Detail)
}

// Unwrap 使 errors.Is(err, ErrActiveJobLimit) 成立
func (e *ActiveJobLimitError) Unwrap() error {
	return ErrActiveJobLimit
}

// IsNotFound 判断后端是否返回 404
func IsNotFound(err error) bool {
	return request.IsStatus(err, http.StatusNotFound)
}

// checkResponse 将非 2xx 响应转为错误，429 按完整响应体解析
func checkResponse(resp *request.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		var limit ActiveJobLimitError
		if err := json.Unmarshal(resp.Body, &limit); err == nil && limit.MaxActiveJobs > 0 {
			return &limit
		}
	case http.StatusForbidden:
		return ErrInvalidToken.WithError(request.NewStatusError(resp))
	}
	return request.NewStatusError(resp)
}

// decode 执行请求并解析 JSON 响应
func decode[T any](req *request.Request) (*T, error) {
	out, err := request.Decode[T](req, checkResponse)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeList 执行请求并解析 JSON 数组响应
func decodeList[T any](req *request.Request) ([]T, error) {
	return request.Decode[[]T](req, checkResponse)
}

// send 执行不关心响应体的请求
func send(req *request.Request) error {
	resp, err := req.Do()
	if err != nil {
		return err
	}
	return checkResponse(resp)
}
