package tablestore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
)

// Fallback 双后端组合：每次调用先尝试远程，出错（或未配置）时改用本地镜像。
//
// 两侧之间没有任何同步，哪一侧在调用时可用就以哪一侧为准。
// 远程返回 ErrNotFound 属于正常结果，不触发降级。
type Fallback struct {
	primary Backend
	mirror  Backend
	logger  *zap.Logger
}

// NewFallback primary 可以为 nil（远程未配置）
func NewFallback(primary, mirror Backend, logger *zap.Logger) *Fallback {
	return &Fallback{primary: primary, mirror: mirror, logger: logger}
}

func (f *Fallback) degrade(op, table string, err error) {
	f.logger.Warn("远程表服务调用失败，改用本地镜像",
		zap.String("op", op),
		zap.String("table", table),
		zap.Error(err),
	)
}

func (f *Fallback) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	if f.primary != nil {
		rows, err := f.primary.Select(ctx, table, q)
		if err == nil {
			return rows, nil
		}
		f.degrade("select", table, err)
	}
	rows, err := f.mirror.Select(ctx, table, q)
	return rows, unavailable(err)
}

func (f *Fallback) Insert(ctx context.Context, table string, row Row) (Row, error) {
	if f.primary != nil {
		created, err := f.primary.Insert(ctx, table, row)
		if err == nil {
			return created, nil
		}
		f.degrade("insert", table, err)
	}
	created, err := f.mirror.Insert(ctx, table, row)
	return created, unavailable(err)
}

func (f *Fallback) Update(ctx context.Context, table, id string, fields Row) (Row, error) {
	if f.primary != nil {
		updated, err := f.primary.Update(ctx, table, id, fields)
		if err == nil || errors.Is(err, ErrNotFound) {
			return updated, err
		}
		f.degrade("update", table, err)
	}
	updated, err := f.mirror.Update(ctx, table, id, fields)
	return updated, unavailable(err)
}

func (f *Fallback) Delete(ctx context.Context, table, id string) error {
	if f.primary != nil {
		err := f.primary.Delete(ctx, table, id)
		if err == nil || errors.Is(err, ErrNotFound) {
			return err
		}
		f.degrade("delete", table, err)
	}
	return unavailable(f.mirror.Delete(ctx, table, id))
}

// unavailable 本地镜像也失败时，统一归为 ErrBackendUnavailable
func unavailable(err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, pkgerrors.ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: 本地镜像: %v", pkgerrors.ErrBackendUnavailable, err)
}
