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

// TrendService builds the trailing 6-calendar-month revenue/target series.
// The window ends at the as-of date's month and is not quarter-aligned.
type TrendService struct {
	dealRepo   *repository.DealRepository
	targetRepo *repository.TargetRepository
	analytics  *config.AnalyticsConfig
	logger     *zap.Logger
}

func NewTrendService(
	dealRepo *repository.DealRepository,
	targetRepo *repository.TargetRepository,
	analytics *config.AnalyticsConfig,
	logger *zap.Logger,
) *TrendService {
	return &TrendService{
		dealRepo:   dealRepo,
		targetRepo: targetRepo,
		analytics:  analytics,
		logger:     logger,
	}
}

// GetRevenueTrend returns four parallel sequences of length 6, oldest month
// first: 3-letter labels, "YYYY-MM" keys, realized Closed-Won revenue, and
// the monthly target (0 when no target row exists). The window decrements
// the year correctly when it crosses a year boundary.
func (s *TrendService) GetRevenueTrend(ctx context.Context) (*domain.RevenueTrend, error) {
	asOf := s.analytics.AsOf()
	anchor := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)

	trend := &domain.RevenueTrend{
		Labels:  make([]string, 0, 6),
		Months:  make([]string, 0, 6),
		Revenue: make([]float64, 0, 6),
		Target:  make([]float64, 0, 6),
	}

	for i := 5; i >= 0; i-- {
		monthStart := anchor.AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, -1)
		key := quarter.MonthKey(monthStart)

		revenue, err := s.dealRepo.WonRevenueBetween(ctx, monthStart, monthEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to get revenue for %s: %w", key, err)
		}

		target, err := s.targetRepo.ForMonth(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get target for %s: %w", key, err)
		}

		trend.Labels = append(trend.Labels, monthStart.Format("Jan"))
		trend.Months = append(trend.Months, key)
		trend.Revenue = append(trend.Revenue, revenue)
		trend.Target = append(trend.Target, target)
	}

	return trend, nil
}
