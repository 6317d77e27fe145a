// Package tablestore 远程表服务抽象：按表名增删改查，支持等值过滤与单列排序。
//
// 所有实现使用同一种列命名（snake_case），领域字段与列名的映射只发生在 repository 层。
package tablestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
)

// Row 一行记录：列名 → 值
type Row map[string]any

// Query 列表查询条件
type Query struct {
	Eq      map[string]any // 列等值过滤（全部满足）
	OrderBy string         // 排序列，空表示不排序
	Desc    bool
}

// Backend 表服务接口
//
// Update 只合并传入的列；Update/Delete 目标不存在时返回 pkgerrors.ErrNotFound。
type Backend interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table, id string, fields Row) (Row, error)
	Delete(ctx context.Context, table, id string) error
}

// IDColumn 主键列名
const IDColumn = "id"

// ErrNotFound 便于调用方只引用本包
var ErrNotFound = pkgerrors.ErrNotFound

// ── 值比较（镜像实现与测试共用）──

// valuesEqual 宽松相等：数值按 float64、其余按字符串形式比较
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}
	return fmt.Sprint(deref(a)) == fmt.Sprint(deref(b))
}

// compareValues 返回 -1/0/1；nil 视为最小
func compareValues(a, b any) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmpOrdered(fa, fb)
		}
	}
	if ta, ok := toTime(a); ok {
		if tb, ok := toTime(b); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cmpOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *int:
		if p == nil {
			return nil
		}
		return *p
	case *float64:
		if p == nil {
			return nil
		}
		return *p
	case *bool:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}
