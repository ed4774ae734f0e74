package repository

import (
	"context"
	"time"

	"github.com/pipemetric/insight-api/internal/domain"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// AccountActivityCount holds the number of recent activities logged against
// one account's open deals
type AccountActivityCount struct {
	AccountID string
	Count     int64
}

// CountRecentOnOpenDeals returns, per account, the number of activities on
// open deals at or after the given cutoff. Accounts with no matching
// activity are absent from the result; callers treat them as 0.
func (r *ActivityRepository) CountRecentOnOpenDeals(ctx context.Context, since time.Time) ([]AccountActivityCount, error) {
	var rows []AccountActivityCount
	err := r.db.WithContext(ctx).Table("activities").
		Select("deals.account_id AS account_id, COUNT(*) AS count").
		Joins("JOIN deals ON deals.deal_id = activities.deal_id").
		Where("deals.stage IN ?", domain.OpenStages).
		Where("activities.timestamp >= ?", since).
		Group("deals.account_id").
		Scan(&rows).Error
	return rows, err
}
