package request

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request 待发送的请求，Set 系列方法可链式调用
// 构建阶段的错误延迟到 Do 或 Stream 返回
type Request struct {
	client *Client
	ctx    context.Context
	method string
	target string
	header http.Header
	query  url.Values
	body   body
	err    error
}

func newRequest(c *Client, method, target string) *Request {
	return &Request{
		client: c,
		ctx:    context.Background(),
		method: method,
		target: target,
		header: make(http.Header),
		query:  make(url.Values),
	}
}

// SetContext 设置请求上下文
func (r *Request) SetContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// SetHeader 设置请求头，覆盖客户端默认值
func (r *Request) SetHeader(k, v string) *Request {
	r.header.Set(k, v)
	return r
}

// SetQuery 设置查询参数，空值忽略
func (r *Request) SetQuery(k, v string) *Request {
	if v != "" {
		r.query.Set(k, v)
	}
	return r
}

// SetBody 以 JSON 编码 v 作为请求体
func (r *Request) SetBody(v any) *Request {
	data, err := json.Marshal(v)
	if err != nil {
		r.err = ErrMarshal.WithError(err)
		return r
	}
	r.body = jsonBody(data)
	return r
}

// SetFormData 添加表单字段
// 未调用 SetFile 时按 urlencoded 编码，否则为 multipart
func (r *Request) SetFormData(fields map[string]string) *Request {
	f := r.form()
	for k, v := range fields {
		f.fields.Set(k, v)
	}
	return r
}

// SetFile 添加上传文件，内容在发送时从 reader 流式读取
func (r *Request) SetFile(field, name string, src io.Reader) *Request {
	f := r.form()
	f.files = append(f.files, upload{field: field, name: name, src: src})
	return r
}

func (r *Request) form() *formBody {
	if f, ok := r.body.(*formBody); ok {
		return f
	}
	f := &formBody{fields: make(url.Values)}
	r.body = f
	return f
}

// Do 执行请求并读完响应体
func (r *Request) Do() (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.client.execute(r)
}

// Stream 将 2xx 响应体写入 w，返回写入字节数
// 非 2xx 返回 *StatusError，流式请求不重试，不受客户端超时限制
func (r *Request) Stream(w io.Writer) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.client.stream(r, w)
}

// replayable 请求体可重复生成时才允许重试
func (r *Request) replayable() bool {
	return r.body == nil || r.body.replayable()
}

// resolve 拼接 base 与查询参数，绝对地址忽略 base
func (r *Request) resolve(base string) (*url.URL, error) {
	raw := r.target
	if base != "" && !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidURL.WithError(err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidURL.WithMessage("invalid url: " + raw)
	}
	if len(r.query) > 0 {
		q := u.Query()
		for k, vs := range r.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// build 生成新的 http.Request
// 头部优先级：请求级 > 请求体类型 > 客户端默认
func (r *Request) build(base string, defaults map[string]string) (*http.Request, error) {
	u, err := r.resolve(base)
	if err != nil {
		return nil, err
	}

	var (
		rd          io.Reader
		contentType string
	)
	if r.body != nil {
		rd, contentType = r.body.open()
	}

	req, err := http.NewRequestWithContext(r.ctx, r.method, u.String(), rd)
	if err != nil {
		return nil, ErrRequestFailed.WithError(err)
	}
	for k, v := range defaults {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range r.header {
		req.Header[k] = vs
	}
	return req, nil
}
