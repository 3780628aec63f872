package request

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/clipper-video/clipper/pkg/errors"
)

// 4000 段错误码：HTTP 客户端相关
var (
	// ErrRequestFailed 请求失败
	ErrRequestFailed = errors.New(4001, 500, "request failed", nil)
	// ErrTimeout 请求超时
	ErrTimeout = errors.New(4002, 504, "request timeout", nil)
	// ErrMarshal 序列化失败
	ErrMarshal = errors.New(4003, 500, "marshal request body failed", nil)
	// ErrUnmarshal 反序列化失败
	ErrUnmarshal = errors.New(4004, 500, "unmarshal response body failed", nil)
	// ErrMaxRetry 重试次数已用尽
	ErrMaxRetry = errors.New(4005, 502, "max retry attempts exceeded", nil)
	// ErrInvalidURL 无效的 URL
	ErrInvalidURL = errors.New(4006, 400, "invalid url", nil)
)

const maxErrorBodyLen = 512

// StatusError 非 2xx 响应
// Body 截断到 512 字节，避免巨大响应体污染错误消息
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	Body       []byte
}

// NewStatusError 由响应构建 StatusError
func NewStatusError(resp *Response) *StatusError {
	body := resp.Body
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen]
	}
	se := &StatusError{StatusCode: resp.StatusCode, Body: body}
	if resp.Request != nil {
		se.Method = resp.Request.Method
		se.URL = resp.Request.URL.String()
	}
	return se
}

// Error 实现 error 接口
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Method != "" {
		msg = e.Method + " " + e.URL + ": " + msg
	}
	if len(e.Body) > 0 {
		msg += ": " + string(e.Body)
	}
	return msg
}

// Unwrap 使 errors.Is(err, ErrRequestFailed) 成立
func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}

// IsStatus 判断 err 是否为指定状态码的 StatusError
func IsStatus(err error, code int) bool {
	var se *StatusError
	return stderrors.As(err, &se) && se.StatusCode == code
}
