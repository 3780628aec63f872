package cache

import (
	"context"
	"errors"
)

// Lookup 读取 key 并解码为 T
// 未命中时 ok 为 false 且 err 为 nil，其余错误原样返回
func Lookup[T any](ctx context.Context, c Cache, key string) (v T, ok bool, err error) {
	err = c.Get(ctx, key, &v)
	switch {
	case err == nil:
		return v, true, nil
	case errors.Is(err, ErrCacheNotFound):
		var zero T
		return zero, false, nil
	default:
		var zero T
		return zero, false, err
	}
}
