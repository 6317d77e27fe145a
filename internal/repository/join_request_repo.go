package repository

import (
	"context"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// JoinRequestRepository 入会申请数据访问接口
type JoinRequestRepository interface {
	Create(ctx context.Context, req *model.JoinRequest) error
	List(ctx context.Context) ([]model.JoinRequest, error)
}

type joinRequestRepo struct {
	*store
}

func (r *joinRequestRepo) Create(ctx context.Context, req *model.JoinRequest) error {
	req.ID = r.newID()
	req.CreatedAt = r.now()
	if req.Status == "" {
		req.Status = model.JoinRequestPending
	}

	row, err := r.backend.Insert(ctx, tableJoinRequests, encodeJoinRequest(req))
	if err != nil {
		return err
	}
	created, err := decodeJoinRequest(row)
	if err != nil {
		return err
	}
	*req = *created
	return nil
}

func (r *joinRequestRepo) List(ctx context.Context) ([]model.JoinRequest, error) {
	rows, err := r.backend.Select(ctx, tableJoinRequests, tablestore.Query{OrderBy: colCreatedAt, Desc: true})
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, decodeJoinRequest)
}
