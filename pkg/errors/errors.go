// Package errors 定义带错误码的错误
//
// 错误码按千位分段：2000 api，3000 cache，4000 request，5000 config，
// 6000 orm，7000 tracing。段内再按包细分，如 3100 jobcache、3200 tracker。
package errors

import stderrors "errors"

// Error 带错误码的错误，预定义实例只读，WithError 与 WithMessage 返回副本
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"` // 对应的 HTTP 状态码
	Err     error  `json:"-"`
}

// New code 为错误码，status 为对应 HTTP 状态码，err 可为 nil
func New(code, status int, message string, err error) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// WithError 返回附带原始错误的副本
func (e *Error) WithError(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// WithMessage 返回替换信息的副本
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// Is 同为 *Error 时按 Code 比较
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Code 错误链上第一个 *Error 的错误码，没有时为 0
func Code(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return 0
}

// Is 同标准库 errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
