package repository

import (
	"context"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// LogRepository 只追加的操作日志：没有更新与删除
type LogRepository interface {
	Append(ctx context.Context, entry *model.LogEntry) error
	// List 最新的在前
	List(ctx context.Context) ([]model.LogEntry, error)
	ListByUser(ctx context.Context, userID string) ([]model.LogEntry, error)
}

type logRepo struct {
	*store
}

func (r *logRepo) Append(ctx context.Context, entry *model.LogEntry) error {
	entry.ID = r.newID()
	entry.Timestamp = r.now()

	row, err := r.backend.Insert(ctx, tableLogs, encodeLog(entry))
	if err != nil {
		return err
	}
	created, err := decodeLog(row)
	if err != nil {
		return err
	}
	*entry = *created
	return nil
}

func (r *logRepo) List(ctx context.Context) ([]model.LogEntry, error) {
	return r.list(ctx, nil)
}

func (r *logRepo) ListByUser(ctx context.Context, userID string) ([]model.LogEntry, error) {
	return r.list(ctx, map[string]any{colUserID: userID})
}

func (r *logRepo) list(ctx context.Context, eq map[string]any) ([]model.LogEntry, error) {
	rows, err := r.backend.Select(ctx, tableLogs, tablestore.Query{Eq: eq, OrderBy: colTimestamp, Desc: true})
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, decodeLog)
}
