package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "clipper/request"

// Client HTTP 客户端，可并发使用
type Client struct {
	cfg *Config
	hc  *http.Client

	// streaming 与 hc 共享连接池，不设整体超时
	streaming *http.Client
}

// New 创建 HTTP 客户端
func New(opts ...Option) *Client {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig 使用配置创建 HTTP 客户端
func NewWithConfig(cfg *Config) *Client {
	rt := newTransport(cfg.Pool, cfg.EnableTracing)
	return &Client{
		cfg:       cfg,
		hc:        &http.Client{Timeout: cfg.Timeout, Transport: rt},
		streaming: &http.Client{Transport: rt},
	}
}

// BaseURL 返回基础 URL
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Get 创建 GET 请求
func (c *Client) Get(url string) *Request { return newRequest(c, http.MethodGet, url) }

// Post 创建 POST 请求
func (c *Client) Post(url string) *Request { return newRequest(c, http.MethodPost, url) }

// Put 创建 PUT 请求
func (c *Client) Put(url string) *Request { return newRequest(c, http.MethodPut, url) }

// Delete 创建 DELETE 请求
func (c *Client) Delete(url string) *Request { return newRequest(c, http.MethodDelete, url) }

// execute 按重试配置执行请求，请求体不可重放时只执行一次
func (c *Client) execute(r *Request) (*Response, error) {
	if c.cfg.Retry == nil || !r.replayable() {
		return c.once(r)
	}
	rc := c.cfg.Retry.withDefaults()

	var (
		resp *Response
		err  error
	)
	for attempt := 0; ; attempt++ {
		resp, err = c.once(r)
		if attempt == rc.MaxAttempts {
			break
		}
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		if !rc.RetryIf(status, err) {
			return resp, err
		}

		wait := time.NewTimer(rc.delay(attempt))
		select {
		case <-r.ctx.Done():
			wait.Stop()
			return nil, fmt.Errorf("%w: %w", ErrTimeout, r.ctx.Err())
		case <-wait.C:
		}
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMaxRetry, err)
	}
	return resp, nil
}

// once 执行单次请求并读完响应体
func (c *Client) once(r *Request) (*Response, error) {
	x, err := c.open(c.hc, r)
	if err != nil {
		return nil, err
	}
	defer x.close()

	body, err := io.ReadAll(x.raw.Body)
	if err != nil {
		return nil, x.fail("http read body failed", err)
	}
	resp := x.response(body)
	x.finish(resp.StatusCode)
	return resp, c.after(x.req.Context(), resp)
}

// stream 执行单次请求并将 2xx 响应体复制到 w
func (c *Client) stream(r *Request, w io.Writer) (int64, error) {
	x, err := c.open(c.streaming, r)
	if err != nil {
		return 0, err
	}
	defer x.close()

	if x.raw.StatusCode < 200 || x.raw.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(x.raw.Body, maxErrorBodyLen))
		resp := x.response(body)
		x.finish(resp.StatusCode)
		if err := c.after(x.req.Context(), resp); err != nil {
			return 0, err
		}
		return 0, NewStatusError(resp)
	}

	n, err := io.Copy(w, x.raw.Body)
	if err != nil {
		return n, x.fail("http stream body failed", err)
	}
	if x.span != nil {
		x.span.SetAttributes(attribute.Int64("http.response_content_length", n))
	}
	resp := x.response(nil)
	x.finish(resp.StatusCode)
	return n, c.after(x.req.Context(), resp)
}

// exchange 一次已发出请求的状态
type exchange struct {
	c     *Client
	req   *http.Request
	raw   *http.Response
	span  trace.Span
	start time.Time
}

// open 构建请求、执行 BeforeRequest 拦截器并发送
func (c *Client) open(hc *http.Client, r *Request) (*exchange, error) {
	req, err := r.build(c.cfg.BaseURL, c.cfg.Headers)
	if err != nil {
		return nil, err
	}
	for _, ic := range c.cfg.Interceptors {
		if err := ic.BeforeRequest(req.Context(), req); err != nil {
			if req.Body != nil {
				req.Body.Close()
			}
			return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
		}
	}

	x := &exchange{c: c, req: req, start: time.Now()}
	if c.cfg.EnableTracing {
		var ctx context.Context
		ctx, x.span = otel.Tracer(tracerName).Start(req.Context(), "HTTP "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.url", req.URL.String()),
			),
		)
		x.req = req.WithContext(ctx)
	}

	x.raw, err = hc.Do(x.req)
	if err != nil {
		return nil, x.fail("http request failed", err)
	}
	return x, nil
}

func (x *exchange) close() { x.raw.Body.Close() }

func (x *exchange) response(body []byte) *Response {
	return &Response{
		StatusCode: x.raw.StatusCode,
		Headers:    x.raw.Header,
		Body:       body,
		Duration:   time.Since(x.start),
		Request:    x.req,
	}
}

// finish 记录状态码并结束 span
func (x *exchange) finish(status int) {
	if x.span == nil {
		return
	}
	x.span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= 400 {
		x.span.SetStatus(codes.Error, http.StatusText(status))
	}
	x.span.End()
}

// fail 记录传输错误并转为错误码
func (x *exchange) fail(msg string, err error) error {
	if x.span != nil {
		x.span.RecordError(err)
		x.span.SetStatus(codes.Error, err.Error())
		x.span.End()
	}
	if log := x.c.cfg.Logger; log != nil {
		log.ErrorContext(x.req.Context(), msg,
			"method", x.req.Method,
			"url", x.req.URL.String(),
			"error", err,
		)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrRequestFailed, err)
}

// after 执行 AfterResponse 拦截器
func (c *Client) after(ctx context.Context, resp *Response) error {
	for _, ic := range c.cfg.Interceptors {
		if err := ic.AfterResponse(ctx, resp); err != nil {
			return fmt.Errorf("%w: %w", ErrRequestFailed, err)
		}
	}
	return nil
}
