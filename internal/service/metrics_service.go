package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pipemetric/insight-api/internal/config"
	"github.com/pipemetric/insight-api/internal/domain"
	"github.com/pipemetric/insight-api/internal/quarter"
	"github.com/pipemetric/insight-api/internal/repository"
	"go.uber.org/zap"
)

// MetricsService computes the quarter-to-date summary and the KPI drivers.
// Every call recomputes from the frozen dataset; there is no caching.
type MetricsService struct {
	dealRepo   *repository.DealRepository
	targetRepo *repository.TargetRepository
	analytics  *config.AnalyticsConfig
	logger     *zap.Logger
}

func NewMetricsService(
	dealRepo *repository.DealRepository,
	targetRepo *repository.TargetRepository,
	analytics *config.AnalyticsConfig,
	logger *zap.Logger,
) *MetricsService {
	return &MetricsService{
		dealRepo:   dealRepo,
		targetRepo: targetRepo,
		analytics:  analytics,
		logger:     logger,
	}
}

// GetSummary returns current-quarter revenue against target plus the
// quarter-over-quarter change. ChangePercent is nil when the previous
// quarter closed no revenue.
func (s *MetricsService) GetSummary(ctx context.Context) (*domain.Summary, error) {
	asOf := s.analytics.AsOf()
	curStart, curEnd := quarter.DateRange(asOf)
	prevStart, prevEnd := quarter.PreviousDateRange(asOf)

	revenue, err := s.dealRepo.WonRevenueBetween(ctx, curStart, curEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get current quarter revenue: %w", err)
	}

	months := quarter.Months(asOf)
	target, err := s.targetRepo.SumForMonths(ctx, months[:])
	if err != nil {
		return nil, fmt.Errorf("failed to get quarter target: %w", err)
	}

	gapPercent := 0.0
	if target > 0 {
		gapPercent = (revenue - target) / target * 100
	}

	prevRevenue, err := s.dealRepo.WonRevenueBetween(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous quarter revenue: %w", err)
	}

	var changePercent *float64
	if prevRevenue > 0 {
		changePercent = float64Ptr(round2((revenue - prevRevenue) / prevRevenue * 100))
	}

	return &domain.Summary{
		CurrentQuarterRevenue: round2(revenue),
		Target:                round2(target),
		GapPercent:            round2(gapPercent),
		ChangePercent:         changePercent,
		ChangeType:            "QoQ",
		QuarterLabel:          quarter.Label(asOf),
	}, nil
}

// GetDrivers returns the KPI values for the current quarter and their
// deltas against the previous quarter. Pipeline size is point-in-time, so
// its change is always reported as 0; the win-rate and average-deal deltas
// are nil when the previous quarter gives no baseline.
func (s *MetricsService) GetDrivers(ctx context.Context) (*domain.Drivers, error) {
	asOf := s.analytics.AsOf()
	curStart, curEnd := quarter.DateRange(asOf)
	prevStart, prevEnd := quarter.PreviousDateRange(asOf)

	pipeline, err := s.dealRepo.PipelineValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline value: %w", err)
	}

	winRate, err := s.winRatePercent(ctx, curStart, curEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get win rate: %w", err)
	}
	prevWinRate, err := s.winRatePercent(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous win rate: %w", err)
	}

	avgDeal, err := s.dealRepo.AverageWonAmountBetween(ctx, curStart, curEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get average deal size: %w", err)
	}
	prevAvgDeal, err := s.dealRepo.AverageWonAmountBetween(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous average deal size: %w", err)
	}

	cycleDays, err := s.salesCycleDays(ctx, curStart, curEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales cycle: %w", err)
	}
	prevCycleDays, err := s.salesCycleDays(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous sales cycle: %w", err)
	}

	// Win-rate delta is a percentage-point difference; nil when the
	// previous quarter closed nothing (no comparable baseline, as opposed
	// to a genuine 0% rate).
	var winRateChange *float64
	if prevWinRate > 0 {
		winRateChange = float64Ptr(round2(winRate - prevWinRate))
	}

	// Average-deal delta is a relative percent change
	var avgDealChange *float64
	if prevAvgDeal > 0 {
		avgDealChange = float64Ptr(round2((avgDeal - prevAvgDeal) / prevAvgDeal * 100))
	}

	return &domain.Drivers{
		PipelineSize:          round2(pipeline),
		WinRatePercent:        round2(winRate),
		AverageDealSize:       round2(avgDeal),
		SalesCycleDays:        cycleDays,
		PipelineChangePercent: 0,
		WinRateChangePercent:  winRateChange,
		AvgDealChangePercent:  avgDealChange,
		SalesCycleChangeDays:  cycleDays - prevCycleDays,
	}, nil
}

// winRatePercent computes won/(won+lost) over deals closed in the range,
// as a 0-100 percentage; 0 when nothing closed
func (s *MetricsService) winRatePercent(ctx context.Context, from, to time.Time) (float64, error) {
	won, lost, err := s.dealRepo.WinLossCountsBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	total := won + lost
	if total == 0 {
		return 0, nil
	}
	return float64(won) / float64(total) * 100, nil
}

// salesCycleDays computes the mean created-to-closed length of won deals in
// the range, rounded to whole days; 0 when no deal qualifies
func (s *MetricsService) salesCycleDays(ctx context.Context, from, to time.Time) (int, error) {
	rows, err := s.dealRepo.WonDealDatesBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	var totalDays float64
	for _, row := range rows {
		totalDays += row.ClosedAt.Sub(row.CreatedAt).Hours() / 24
	}
	return roundDays(totalDays / float64(len(rows))), nil
}
