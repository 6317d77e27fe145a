package repository

import (
	"context"
	"sort"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// SlotRepository 训练时段数据访问接口
type SlotRepository interface {
	// Create 分配 ID 与创建时间，completed / attendance_marked 置为 false
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	// List 按日期、开始时间升序
	List(ctx context.Context) ([]model.Slot, error)
	ListByDate(ctx context.Context, date string) ([]model.Slot, error)
	Update(ctx context.Context, id string, patch model.SlotPatch) (*model.Slot, error)
	Delete(ctx context.Context, id string) error
}

type slotRepo struct {
	*store
}

func (r *slotRepo) Create(ctx context.Context, slot *model.Slot) error {
	slot.ID = r.newID()
	slot.CreatedAt = r.now()
	slot.Completed = false
	slot.AttendanceMarked = false

	row, err := r.backend.Insert(ctx, tableSchedule, encodeSlot(slot))
	if err != nil {
		return err
	}
	created, err := decodeSlot(row)
	if err != nil {
		return err
	}
	*slot = *created
	return nil
}

func (r *slotRepo) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	rows, err := r.backend.Select(ctx, tableSchedule, tablestore.Query{
		Eq: map[string]any{tablestore.IDColumn: id},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return decodeSlot(rows[0])
}

func (r *slotRepo) List(ctx context.Context) ([]model.Slot, error) {
	return r.list(ctx, tablestore.Query{OrderBy: colDate})
}

func (r *slotRepo) ListByDate(ctx context.Context, date string) ([]model.Slot, error) {
	return r.list(ctx, tablestore.Query{Eq: map[string]any{colDate: date}})
}

func (r *slotRepo) list(ctx context.Context, q tablestore.Query) ([]model.Slot, error) {
	rows, err := r.backend.Select(ctx, tableSchedule, q)
	if err != nil {
		return nil, err
	}
	slots, err := decodeAll(rows, decodeSlot)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].TimeStart < slots[j].TimeStart
	})
	return slots, nil
}

func (r *slotRepo) Update(ctx context.Context, id string, patch model.SlotPatch) (*model.Slot, error) {
	fields := encodeSlotPatch(patch)
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	row, err := r.backend.Update(ctx, tableSchedule, id, fields)
	if err != nil {
		return nil, err
	}
	return decodeSlot(row)
}

func (r *slotRepo) Delete(ctx context.Context, id string) error {
	return r.backend.Delete(ctx, tableSchedule, id)
}
