package tablestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/barak121-cloud/sim-management-bh/pkg/kv"
)

// Mirror 本地镜像：每张表以 JSON 数组形式保存在一个 key 下（<prefix>_<table>）
type Mirror struct {
	store  kv.Store
	prefix string
	mu     sync.Mutex
}

// NewMirror 创建本地镜像表服务
func NewMirror(store kv.Store, prefix string) *Mirror {
	return &Mirror{store: store, prefix: prefix}
}

func (m *Mirror) key(table string) string {
	return m.prefix + "_" + table
}

func (m *Mirror) load(ctx context.Context, table string) ([]Row, error) {
	raw, ok, err := m.store.Get(ctx, m.key(table))
	if err != nil {
		return nil, fmt.Errorf("读取本地镜像 %s 失败: %w", table, err)
	}
	if !ok || raw == "" {
		return []Row{}, nil
	}
	var rows []Row
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("解析本地镜像 %s 失败: %w", table, err)
	}
	return rows, nil
}

func (m *Mirror) save(ctx context.Context, table string, rows []Row) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("序列化本地镜像 %s 失败: %w", table, err)
	}
	return m.store.Set(ctx, m.key(table), string(raw))
}

func (m *Mirror) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	m.mu.Lock()
	rows, err := m.load(ctx, table)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0, len(rows))
	for _, row := range rows {
		if matches(row, q.Eq) {
			result = append(result, row)
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(result, func(i, j int) bool {
			c := compareValues(result[i][q.OrderBy], result[j][q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	return result, nil
}

func (m *Mirror) Insert(ctx context.Context, table string, row Row) (Row, error) {
	// 统一经过一次 JSON 往返，返回值与之后读到的形态一致
	normalized, err := normalize(row)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.load(ctx, table)
	if err != nil {
		return nil, err
	}
	rows = append(rows, normalized)
	if err := m.save(ctx, table, rows); err != nil {
		return nil, err
	}
	return normalized, nil
}

func (m *Mirror) Update(ctx context.Context, table, id string, fields Row) (Row, error) {
	normalized, err := normalize(fields)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.load(ctx, table)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if !valuesEqual(row[IDColumn], id) {
			continue
		}
		for k, v := range normalized {
			row[k] = v
		}
		rows[i] = row
		if err := m.save(ctx, table, rows); err != nil {
			return nil, err
		}
		return row, nil
	}
	return nil, ErrNotFound
}

func (m *Mirror) Delete(ctx context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.load(ctx, table)
	if err != nil {
		return err
	}
	kept := rows[:0]
	found := false
	for _, row := range rows {
		if valuesEqual(row[IDColumn], id) {
			found = true
			continue
		}
		kept = append(kept, row)
	}
	if !found {
		return ErrNotFound
	}
	return m.save(ctx, table, kept)
}

func matches(row Row, eq map[string]any) bool {
	for col, want := range eq {
		if !valuesEqual(row[col], want) {
			return false
		}
	}
	return true
}

func normalize(row Row) (Row, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("序列化记录失败: %w", err)
	}
	var out Row
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("解析记录失败: %w", err)
	}
	return out, nil
}
