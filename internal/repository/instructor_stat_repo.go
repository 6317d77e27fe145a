package repository

import (
	"context"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// InstructorStatRepository 教练时长统计数据访问接口
type InstructorStatRepository interface {
	Create(ctx context.Context, stat *model.InstructorStat) error
	// Find 按 (教练, 课程类型) 查找，不存在时返回 ErrNotFound
	Find(ctx context.Context, instructorID, lessonType string) (*model.InstructorStat, error)
	List(ctx context.Context) ([]model.InstructorStat, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]model.InstructorStat, error)
	SetHours(ctx context.Context, id string, hours float64) (*model.InstructorStat, error)
}

type instructorStatRepo struct {
	*store
}

func (r *instructorStatRepo) Create(ctx context.Context, stat *model.InstructorStat) error {
	stat.ID = r.newID()

	row, err := r.backend.Insert(ctx, tableInstructorStats, encodeStat(stat))
	if err != nil {
		return err
	}
	created, err := decodeStat(row)
	if err != nil {
		return err
	}
	*stat = *created
	return nil
}

func (r *instructorStatRepo) Find(ctx context.Context, instructorID, lessonType string) (*model.InstructorStat, error) {
	rows, err := r.backend.Select(ctx, tableInstructorStats, tablestore.Query{
		Eq: map[string]any{colInstructorID: instructorID, colLessonType: lessonType},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return decodeStat(rows[0])
}

func (r *instructorStatRepo) List(ctx context.Context) ([]model.InstructorStat, error) {
	return r.list(ctx, nil)
}

func (r *instructorStatRepo) ListByInstructor(ctx context.Context, instructorID string) ([]model.InstructorStat, error) {
	return r.list(ctx, map[string]any{colInstructorID: instructorID})
}

func (r *instructorStatRepo) list(ctx context.Context, eq map[string]any) ([]model.InstructorStat, error) {
	rows, err := r.backend.Select(ctx, tableInstructorStats, tablestore.Query{Eq: eq, OrderBy: colLessonType})
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, decodeStat)
}

func (r *instructorStatRepo) SetHours(ctx context.Context, id string, hours float64) (*model.InstructorStat, error) {
	row, err := r.backend.Update(ctx, tableInstructorStats, id, tablestore.Row{colHours: hours})
	if err != nil {
		return nil, err
	}
	return decodeStat(row)
}
