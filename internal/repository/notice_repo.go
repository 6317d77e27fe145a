package repository

import (
	"context"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// NoticeRepository 公告数据访问接口
type NoticeRepository interface {
	Create(ctx context.Context, notice *model.Notice) error
	GetByID(ctx context.Context, id string) (*model.Notice, error)
	// List 最新的在前
	List(ctx context.Context) ([]model.Notice, error)
	Delete(ctx context.Context, id string) error
}

type noticeRepo struct {
	*store
}

func (r *noticeRepo) Create(ctx context.Context, notice *model.Notice) error {
	notice.ID = r.newID()
	notice.CreatedAt = r.now()

	row, err := r.backend.Insert(ctx, tableNotices, encodeNotice(notice))
	if err != nil {
		return err
	}
	created, err := decodeNotice(row)
	if err != nil {
		return err
	}
	*notice = *created
	return nil
}

func (r *noticeRepo) GetByID(ctx context.Context, id string) (*model.Notice, error) {
	rows, err := r.backend.Select(ctx, tableNotices, tablestore.Query{
		Eq: map[string]any{tablestore.IDColumn: id},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return decodeNotice(rows[0])
}

func (r *noticeRepo) List(ctx context.Context) ([]model.Notice, error) {
	rows, err := r.backend.Select(ctx, tableNotices, tablestore.Query{OrderBy: colCreatedAt, Desc: true})
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, decodeNotice)
}

func (r *noticeRepo) Delete(ctx context.Context, id string) error {
	return r.backend.Delete(ctx, tableNotices, id)
}
