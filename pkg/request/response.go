package request

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response 已读完响应体的响应
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Request    *http.Request
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Unmarshal 将响应体按 JSON 解码到 v
func (r *Response) Unmarshal(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return ErrUnmarshal.WithError(err)
	}
	return nil
}

// Decode 执行请求，由 check 判定响应，通过后将响应体解码为 T
// check 为 nil 时非 2xx 返回 *StatusError
func Decode[T any](req *Request, check func(*Response) error) (T, error) {
	var out T
	resp, err := req.Do()
	if err != nil {
		return out, err
	}
	if check == nil {
		check = requireSuccess
	}
	if err := check(resp); err != nil {
		return out, err
	}
	err = resp.Unmarshal(&out)
	return out, err
}

func requireSuccess(resp *Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return NewStatusError(resp)
}
