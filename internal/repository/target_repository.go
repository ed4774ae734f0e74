package repository

import (
	"context"

	"github.com/pipemetric/insight-api/internal/domain"
	"gorm.io/gorm"
)

type TargetRepository struct {
	db *gorm.DB
}

func NewTargetRepository(db *gorm.DB) *TargetRepository {
	return &TargetRepository{db: db}
}

// SumForMonths returns the summed revenue target for the given month keys.
// Months without a target row simply contribute nothing.
func (r *TargetRepository) SumForMonths(ctx context.Context, months []string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.Target{}).
		Where("month IN ?", months).
		Select("COALESCE(SUM(target), 0)").
		Scan(&total).Error
	return total, err
}

// ForMonth returns the target for a single month, 0 when absent
func (r *TargetRepository) ForMonth(ctx context.Context, month string) (float64, error) {
	var target domain.Target
	err := r.db.WithContext(ctx).Where("month = ?", month).First(&target).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return target.Target, nil
}

// ReplaceAll swaps the full target set in one transaction. Used by the
// warehouse refresh; the seeded rows are replaced atomically so readers
// never observe a half-loaded target table.
func (r *TargetRepository) ReplaceAll(ctx context.Context, targets []domain.Target) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Target{}).Error; err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}
		return tx.Create(&targets).Error
	})
}
