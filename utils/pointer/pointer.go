// Package pointer 可选参数的指针辅助
package pointer

// Of 返回 v 副本的指针，用于填写可选的数值字段
func Of[T any](v T) *T {
	return &v
}
