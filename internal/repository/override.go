package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/repository/dao"
)

type OverrideDAO interface {
	FindAll(ctx context.Context) ([]dao.TableStatusOverride, error)
	Upsert(ctx context.Context, override dao.TableStatusOverride) (dao.TableStatusOverride, error)
	Delete(ctx context.Context, tableID uint) error
}

// OverrideRepository persists table status overrides one row per table.
type OverrideRepository struct {
	dao OverrideDAO
}

func NewOverrideRepository(dao OverrideDAO) *OverrideRepository {
	return &OverrideRepository{
		dao: dao,
	}
}

// Load returns the stored overrides. A row with an unknown status is skipped and logged so
// one bad row does not cost the operator every other override.
func (r *OverrideRepository) Load(ctx context.Context) (map[uint]domain.TableStatus, error) {
	rows, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	overrides := make(map[uint]domain.TableStatus, len(rows))
	for _, row := range rows {
		status := domain.TableStatus(row.Status)
		if !status.Valid() {
			zap.L().Warn("skipping stored override with unknown status",
				zap.Uint("table_id", row.TableID),
				zap.String("status", row.Status))
			continue
		}
		overrides[row.TableID] = status
	}

	return overrides, nil
}

func (r *OverrideRepository) Put(ctx context.Context, tableID uint, status domain.TableStatus) error {
	_, err := r.dao.Upsert(ctx, dao.TableStatusOverride{
		TableID: tableID,
		Status:  string(status),
	})
	if err != nil {
		return fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return nil
}

func (r *OverrideRepository) Delete(ctx context.Context, tableID uint) error {
	if err := r.dao.Delete(ctx, tableID); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}
