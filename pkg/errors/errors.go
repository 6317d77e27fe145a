package errors

import "errors"

var (
	// ErrNotFound 目标记录不存在（更新/删除/按 ID 查询）
	ErrNotFound = errors.New("记录不存在")

	// ErrBackendUnavailable 远程表服务未配置或不可达
	ErrBackendUnavailable = errors.New("远程存储不可用")
)
