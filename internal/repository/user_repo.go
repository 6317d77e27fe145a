package repository

import (
	"context"
	"strings"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// UserRepository 用户数据访问接口（用户不会被删除）
type UserRepository interface {
	// Create 分配 ID 与创建时间并补齐默认值，写回 user
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// Update 只合并补丁中设置的字段；用户不存在时返回 ErrNotFound
	Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
}

type userRepo struct {
	*store
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = r.newID()
	user.CreatedAt = r.now()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.NoShowCount = 0
	user.TotalHours = 0
	if user.CurrentLesson == 0 {
		user.CurrentLesson = model.FirstLesson
	}
	if user.Status == "" {
		user.Status = model.DefaultStatus(user.Role)
	}

	row, err := r.backend.Insert(ctx, tableUsers, encodeUser(user))
	if err != nil {
		return err
	}
	created, err := decodeUser(row)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, map[string]any{tablestore.IDColumn: id})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, map[string]any{colEmail: strings.ToLower(strings.TrimSpace(email))})
}

func (r *userRepo) findOne(ctx context.Context, eq map[string]any) (*model.User, error) {
	rows, err := r.backend.Select(ctx, tableUsers, tablestore.Query{Eq: eq})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return decodeUser(rows[0])
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.backend.Select(ctx, tableUsers, tablestore.Query{OrderBy: colCreatedAt})
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, decodeUser)
}

func (r *userRepo) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	fields := encodeUserPatch(patch)
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	row, err := r.backend.Update(ctx, tableUsers, id, fields)
	if err != nil {
		return nil, err
	}
	return decodeUser(row)
}
