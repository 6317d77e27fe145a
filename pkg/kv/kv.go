// Package kv 本地持久化键值存储（本地镜像的底层载体）
package kv

import (
	"context"
	"time"
)

// Store 字符串键值存储接口，进程级共享，重启后仍然保留
type Store interface {
	// Get 读取 key；不存在时 ok=false 且 err=nil
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Expiring 支持按 TTL 写入的存储（redis），会话等临时数据优先使用
type Expiring interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}
