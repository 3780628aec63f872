package request

import (
	"context"
	"net/http"
)

// Interceptor 请求拦截器，任一方法返回错误都会中止请求
type Interceptor interface {
	BeforeRequest(ctx context.Context, req *http.Request) error
	// AfterResponse 下载成功时 Body 为空
	AfterResponse(ctx context.Context, resp *Response) error
}

// NewLoggingInterceptor 以 Debug 级别记录每个请求与响应
func NewLoggingInterceptor(log Logger) Interceptor {
	return traffic{log: log}
}

type traffic struct {
	log Logger
}

func (t traffic) BeforeRequest(ctx context.Context, req *http.Request) error {
	t.log.DebugContext(ctx, "http request", "method", req.Method, "url", req.URL.String())
	return nil
}

func (t traffic) AfterResponse(ctx context.Context, resp *Response) error {
	t.log.DebugContext(ctx, "http response",
		"method", resp.Request.Method,
		"url", resp.Request.URL.String(),
		"status", resp.StatusCode,
		"duration", resp.Duration,
	)
	return nil
}

// NewAuthInterceptor 每次请求时取 token 设置 Bearer 认证头，token 为空时不设置
func NewAuthInterceptor(token func() string) Interceptor {
	return bearer(token)
}

type bearer func() string

func (b bearer) BeforeRequest(_ context.Context, req *http.Request) error {
	if tok := b(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return nil
}

func (bearer) AfterResponse(context.Context, *Response) error { return nil }
