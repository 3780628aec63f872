package request

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
)

// body 请求体，open 每次返回新的 reader 及默认 Content-Type
type body interface {
	open() (io.Reader, string)
	replayable() bool
}

type jsonBody []byte

func (b jsonBody) open() (io.Reader, string) { return bytes.NewReader(b), "application/json" }
func (jsonBody) replayable() bool            { return true }

// formBody 表单请求体
type formBody struct {
	fields url.Values
	files  []upload
}

// upload 一个文件字段
type upload struct {
	field string
	name  string
	src   io.Reader
}

func (f *formBody) replayable() bool { return len(f.files) == 0 }

func (f *formBody) open() (io.Reader, string) {
	if len(f.files) == 0 {
		return strings.NewReader(f.fields.Encode()), "application/x-www-form-urlencoded"
	}

	// 经 io.Pipe 边写边发，文件不整体读入内存
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		if err := f.write(mw); err != nil {
			pw.CloseWithError(ErrMarshal.WithError(err))
			return
		}
		pw.Close()
	}()
	return pr, mw.FormDataContentType()
}

func (f *formBody) write(mw *multipart.Writer) error {
	for k, vs := range f.fields {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				return err
			}
		}
	}
	for _, u := range f.files {
		part, err := mw.CreateFormFile(u.field, u.name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, u.src); err != nil {
			return err
		}
	}
	return mw.Close()
}
