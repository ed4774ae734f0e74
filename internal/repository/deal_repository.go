package repository

import (
	"context"
	"time"

	"github.com/pipemetric/insight-api/internal/domain"
	"gorm.io/gorm"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

// PipelineValue returns the total amount of all open (Prospecting or
// Negotiation) deals. Pipeline is a point-in-time metric and is never
// filtered by date range; null amounts count as 0.
func (r *DealRepository) PipelineValue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("stage IN ?", domain.OpenStages).
		Select("COALESCE(SUM(COALESCE(amount, 0)), 0)").
		Scan(&total).Error
	return total, err
}

// WonRevenueBetween returns the summed amount of Closed Won deals whose
// closed_at falls in [from, to], null amounts counting as 0
func (r *DealRepository) WonRevenueBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("stage = ?", domain.DealStageClosedWon).
		Where("closed_at >= ? AND closed_at <= ?", from, to).
		Select("COALESCE(SUM(COALESCE(amount, 0)), 0)").
		Scan(&total).Error
	return total, err
}

// WinLossCountsBetween returns the number of Closed Won and Closed Lost
// deals whose closed_at falls in [from, to]
func (r *DealRepository) WinLossCountsBetween(ctx context.Context, from, to time.Time) (won, lost int64, err error) {
	var row struct {
		Won  int64
		Lost int64
	}
	err = r.db.WithContext(ctx).Model(&domain.Deal{}).
		Select("COALESCE(SUM(CASE WHEN stage = ? THEN 1 ELSE 0 END), 0) AS won, COALESCE(SUM(CASE WHEN stage = ? THEN 1 ELSE 0 END), 0) AS lost",
			domain.DealStageClosedWon, domain.DealStageClosedLost).
		Where("stage IN ?", domain.ClosedStages).
		Where("closed_at >= ? AND closed_at <= ?", from, to).
		Scan(&row).Error
	return row.Won, row.Lost, err
}

// AverageWonAmountBetween returns the mean amount of Closed Won deals in
// [from, to] whose amount is present and strictly positive; 0 when no deal
// qualifies. Zero and null amounts are excluded from both sum and count.
func (r *DealRepository) AverageWonAmountBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("stage = ?", domain.DealStageClosedWon).
		Where("amount IS NOT NULL AND amount > 0").
		Where("closed_at >= ? AND closed_at <= ?", from, to).
		Select("COALESCE(AVG(amount), 0)").
		Scan(&avg).Error
	return avg, err
}

// WonDealDates carries the creation and close dates of one won deal, used
// for sales-cycle length computation
type WonDealDates struct {
	CreatedAt time.Time
	ClosedAt  time.Time
}

// WonDealDatesBetween returns created/closed date pairs of Closed Won deals
// in [from, to]. Day arithmetic happens in the service to stay portable
// across the sqlite and postgres drivers.
func (r *DealRepository) WonDealDatesBetween(ctx context.Context, from, to time.Time) ([]WonDealDates, error) {
	var rows []WonDealDates
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Select("created_at, closed_at").
		Where("stage = ?", domain.DealStageClosedWon).
		Where("closed_at IS NOT NULL").
		Where("closed_at >= ? AND closed_at <= ?", from, to).
		Scan(&rows).Error
	return rows, err
}

// RepWinLoss holds per-rep closed-deal counts for one quarter
type RepWinLoss struct {
	RepID   string
	RepName string
	Won     int64
	Lost    int64
}

// WinLossByRepBetween returns closed-deal counts grouped by rep for deals
// closed in [from, to]. Group order depends on the driver; callers that pick
// "the first" rep inherit that arbitrariness.
func (r *DealRepository) WinLossByRepBetween(ctx context.Context, from, to time.Time) ([]RepWinLoss, error) {
	var rows []RepWinLoss
	err := r.db.WithContext(ctx).Table("deals").
		Select("deals.rep_id AS rep_id, COALESCE(reps.name, '') AS rep_name, "+
			"SUM(CASE WHEN deals.stage = ? THEN 1 ELSE 0 END) AS won, "+
			"SUM(CASE WHEN deals.stage = ? THEN 1 ELSE 0 END) AS lost",
			domain.DealStageClosedWon, domain.DealStageClosedLost).
		Joins("LEFT JOIN reps ON reps.rep_id = deals.rep_id").
		Where("deals.stage IN ?", domain.ClosedStages).
		Where("deals.closed_at >= ? AND deals.closed_at <= ?", from, to).
		Group("deals.rep_id, reps.name").
		Scan(&rows).Error
	return rows, err
}

// OpenDealActivity is an open deal joined with its most recent activity
// timestamp and the owning rep/account attributes needed for risk signals
type OpenDealActivity struct {
	DealID         string
	AccountID      string
	RepID          string
	RepName        string
	Segment        domain.AccountSegment
	Amount         *float64
	CreatedAt      time.Time
	LastActivityAt *time.Time
}

// OpenDealsWithLastActivity returns every open deal with the timestamp of
// its latest activity (nil when the deal has none; staleness then falls
// back to created_at). Rep and account rows are left-joined so a dangling
// foreign key surfaces as an empty name rather than dropping the deal.
func (r *DealRepository) OpenDealsWithLastActivity(ctx context.Context) ([]OpenDealActivity, error) {
	var rows []OpenDealActivity
	err := r.db.WithContext(ctx).Table("deals").
		Select("deals.deal_id AS deal_id, deals.account_id AS account_id, deals.rep_id AS rep_id, " +
			"COALESCE(reps.name, '') AS rep_name, COALESCE(accounts.segment, '') AS segment, " +
			"deals.amount AS amount, deals.created_at AS created_at, la.last_ts AS last_activity_at").
		Joins("LEFT JOIN (SELECT deal_id, MAX(timestamp) AS last_ts FROM activities GROUP BY deal_id) la ON la.deal_id = deals.deal_id").
		Joins("LEFT JOIN reps ON reps.rep_id = deals.rep_id").
		Joins("LEFT JOIN accounts ON accounts.account_id = deals.account_id").
		Where("deals.stage IN ?", domain.OpenStages).
		Scan(&rows).Error
	return rows, err
}
