package model

// Set 部分更新字段：Valid=false 表示不修改，Valid=true 时写入 Value（指针类型可写入 nil 表示清空）
type Set[T any] struct {
	Valid bool
	Value T
}

// Val 构造一个需要写入的字段
func Val[T any](v T) Set[T] {
	return Set[T]{Valid: true, Value: v}
}

// Null 构造一个清空为 null 的指针字段
func Null[T any]() Set[*T] {
	return Set[*T]{Valid: true}
}

// Ptr 取地址的小工具
func Ptr[T any](v T) *T {
	return &v
}
