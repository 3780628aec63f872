package jobcache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// JobID 任务标识，对缓存不透明
// 读取时兼容数字形式的旧记录
type JobID string

// UnmarshalJSON 接受字符串或数字
func (id *JobID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = JobID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("job id must be a string or number: %w", err)
	}
	*id = JobID(n.String())
	return nil
}

// String 实现 fmt.Stringer
func (id JobID) String() string {
	return string(id)
}

// Record 持久化的当前任务记录，只包含以下五个字段
//
// 除 created_at 外各字段对缓存不透明：类型不符的值照常读取，
// 未被修改时按原始 JSON 写回。
type Record struct {
	ID          JobID   `json:"id"`
	AccessToken string  `json:"access_token"`
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
	CreatedAt   string  `json:"created_at"`

	// raw 类型不符字段的原始值，键为 JSON 字段名
	raw map[string]rawField
}

// rawField 原始 JSON 及读取时得到的 Go 值
type rawField struct {
	msg  json.RawMessage
	seen any
}

// UnmarshalJSON 只要求顶层是对象，字段类型不符时保留原始值
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("job record must be an object")
	}

	*r = Record{}
	if msg, ok := fields["id"]; ok {
		r.ID = JobID(r.text("id", msg, true))
	}
	if msg, ok := fields["access_token"]; ok {
		r.AccessToken = r.text("access_token", msg, false)
	}
	if msg, ok := fields["status"]; ok {
		r.Status = r.text("status", msg, false)
	}
	if msg, ok := fields["progress"]; ok {
		r.Progress = r.number("progress", msg)
	}
	if msg, ok := fields["created_at"]; ok {
		// 非字符串视为无法解析，保持为空
		var s string
		switch {
		case json.Unmarshal(msg, &s) == nil:
			r.CreatedAt = s
		case !bytes.Equal(bytes.TrimSpace(msg), []byte("null")):
			r.keep("created_at", msg, "")
		}
	}
	return nil
}

// MarshalJSON 始终写出五个字段
func (r Record) MarshalJSON() ([]byte, error) {
	var out struct {
		ID          json.RawMessage `json:"id"`
		AccessToken json.RawMessage `json:"access_token"`
		Status      json.RawMessage `json:"status"`
		Progress    json.RawMessage `json:"progress"`
		CreatedAt   json.RawMessage `json:"created_at"`
	}
	var err error
	if out.ID, err = r.field("id", r.ID, string(r.ID)); err != nil {
		return nil, err
	}
	if out.AccessToken, err = r.field("access_token", r.AccessToken, r.AccessToken); err != nil {
		return nil, err
	}
	if out.Status, err = r.field("status", r.Status, r.Status); err != nil {
		return nil, err
	}
	if out.Progress, err = r.field("progress", r.Progress, r.Progress); err != nil {
		return nil, err
	}
	if out.CreatedAt, err = r.field("created_at", r.CreatedAt, r.CreatedAt); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// field 值未变时写回原始 JSON
func (r Record) field(key string, current, plain any) (json.RawMessage, error) {
	if f, ok := r.raw[key]; ok && f.seen == current {
		return f.msg, nil
	}
	return json.Marshal(plain)
}

func (r *Record) keep(key string, msg json.RawMessage, seen any) {
	if r.raw == nil {
		r.raw = make(map[string]rawField)
	}
	r.raw[key] = rawField{msg: append(json.RawMessage(nil), msg...), seen: seen}
}

// text 字符串原样返回，null 为空，其余取原始 JSON 文本
// numberOK 为 true 时数字按十进制文本读取并保留原始值
func (r *Record) text(key string, msg json.RawMessage, numberOK bool) string {
	msg = bytes.TrimSpace(msg)
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}
	if bytes.Equal(msg, []byte("null")) {
		return ""
	}
	var n json.Number
	if numberOK && json.Unmarshal(msg, &n) == nil {
		s = n.String()
	} else {
		s = string(msg)
	}
	seen := any(s)
	if key == "id" {
		seen = JobID(s)
	}
	r.keep(key, msg, seen)
	return s
}

// number 数字直接读取，数字字符串按数值读取，其余为 0，非数字时保留原始值
func (r *Record) number(key string, msg json.RawMessage) float64 {
	msg = bytes.TrimSpace(msg)
	var f float64
	if err := json.Unmarshal(msg, &f); err == nil {
		return f
	}
	if bytes.Equal(msg, []byte("null")) {
		return 0
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f = v
		}
	}
	r.keep(key, msg, f)
	return f
}

// project 将任意任务对象投影为 Record，多余字段丢弃
func project(job any) (*Record, error) {
	switch v := job.(type) {
	case Record:
		return &v, nil
	case *Record:
		if v == nil {
			return nil, errNilJob
		}
		rec := *v
		return &rec, nil
	}

	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(data, []byte("null")) {
		return nil, errNilJob
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
