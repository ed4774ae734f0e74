package repository

import (
	"context"

	"github.com/pipemetric/insight-api/internal/domain"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// OpenDealAccount is an account that currently has at least one open deal
type OpenDealAccount struct {
	AccountID string
	Name      string
	Segment   domain.AccountSegment
}

// WithOpenDeals returns the distinct accounts referenced by open deals.
// The account row is left-joined: a deal pointing at a missing account
// yields empty name/segment and the caller falls back to the raw id.
func (r *AccountRepository) WithOpenDeals(ctx context.Context) ([]OpenDealAccount, error) {
	var rows []OpenDealAccount
	err := r.db.WithContext(ctx).Table("deals").
		Select("DISTINCT deals.account_id AS account_id, COALESCE(accounts.name, '') AS name, COALESCE(accounts.segment, '') AS segment").
		Joins("LEFT JOIN accounts ON accounts.account_id = deals.account_id").
		Where("deals.stage IN ?", domain.OpenStages).
		Scan(&rows).Error
	return rows, err
}
