package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableStatusOverride struct {
	TableID   uint   `gorm:"primaryKey;autoIncrement:false"`
	Status    string `gorm:"not null"`
	UpdatedAt time.Time
}

type OverrideDAO struct {
	db *gorm.DB
}

func NewOverrideDAO(db *gorm.DB) *OverrideDAO {
	return &OverrideDAO{
		db: db,
	}
}

func (d *OverrideDAO) FindAll(ctx context.Context) ([]TableStatusOverride, error) {
	var overrides []TableStatusOverride

	result := d.db.WithContext(ctx).Order("table_id").Find(&overrides)
	if result.Error != nil {
		return nil, result.Error
	}

	return overrides, nil
}

// Upsert writes a single override row; other tables' rows are never touched.
func (d *OverrideDAO) Upsert(ctx context.Context, override TableStatusOverride) (TableStatusOverride, error) {
	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "table_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&override)
	if result.Error != nil {
		return TableStatusOverride{}, result.Error
	}

	return override, nil
}

func (d *OverrideDAO) Delete(ctx context.Context, tableID uint) error {
	return d.db.WithContext(ctx).Delete(&TableStatusOverride{}, tableID).Error
}
