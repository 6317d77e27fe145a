package tablestore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm 直连 PostgreSQL 的表服务实现（表结构由 pkg/database 迁移维护）
type Gorm struct {
	db *gorm.DB
}

// NewGorm 创建 GORM 表服务
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	tx := g.db.WithContext(ctx).Table(table)
	for col, v := range q.Eq {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: v})
	}
	if q.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: q.Desc})
	}

	var out []map[string]any
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(out))
	for _, m := range out {
		rows = append(rows, Row(m))
	}
	return rows, nil
}

func (g *Gorm) Insert(ctx context.Context, table string, row Row) (Row, error) {
	if err := g.db.WithContext(ctx).Table(table).Create(map[string]any(row)).Error; err != nil {
		return nil, err
	}
	return g.get(ctx, table, row[IDColumn])
}

func (g *Gorm) Update(ctx context.Context, table, id string, fields Row) (Row, error) {
	res := g.db.WithContext(ctx).
		Table(table).
		Where(clause.Eq{Column: clause.Column{Name: IDColumn}, Value: id}).
		Updates(map[string]any(fields))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return g.get(ctx, table, id)
}

func (g *Gorm) Delete(ctx context.Context, table, id string) error {
	res := g.db.WithContext(ctx).Exec("DELETE FROM ? WHERE ? = ?",
		clause.Table{Name: table}, clause.Column{Name: IDColumn}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) get(ctx context.Context, table string, id any) (Row, error) {
	out := map[string]any{}
	err := g.db.WithContext(ctx).
		Table(table).
		Where(clause.Eq{Column: clause.Column{Name: IDColumn}, Value: id}).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return Row(out), nil
}
