package cache

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errEmptyValue = errors.New("stored value is empty")

// JSONSerializer 默认序列化器，空值视为损坏而不是 null
type JSONSerializer struct{}

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errEmptyValue
	}
	return json.Unmarshal(data, v)
}
