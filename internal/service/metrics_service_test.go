package service_test

import (
	"context"
	"testing"

	"github.com/pipemetric/insight-api/internal/domain"
	"github.com/pipemetric/insight-api/internal/repository"
	"github.com/pipemetric/insight-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMetricsService(t *testing.T) (*service.MetricsService, func(value interface{})) {
	t.Helper()
	db := newTestDB(t)
	svc := service.NewMetricsService(
		repository.NewDealRepository(db),
		repository.NewTargetRepository(db),
		testAnalytics(),
		zap.NewNop(),
	)
	return svc, func(value interface{}) { mustCreate(t, db, value) }
}

func TestGetSummary(t *testing.T) {
	svc, create := newMetricsService(t)

	// current quarter (Q1 2025): 60000 + 40000 won, two losses
	create(&domain.Deal{DealID: "d1", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(60000), CreatedAt: day("2024-12-16"), ClosedAt: dayPtr("2025-01-15")})
	create(&domain.Deal{DealID: "d2", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(40000), CreatedAt: day("2025-01-06"), ClosedAt: dayPtr("2025-02-05")})
	create(&domain.Deal{DealID: "d3", AccountID: "a2", RepID: "r1", Stage: domain.DealStageClosedLost,
		Amount: fptr(15000), CreatedAt: day("2025-01-02"), ClosedAt: dayPtr("2025-01-20")})
	create(&domain.Deal{DealID: "d4", AccountID: "a2", RepID: "r1", Stage: domain.DealStageClosedLost,
		Amount: nil, CreatedAt: day("2025-01-03"), ClosedAt: dayPtr("2025-02-01")})

	// previous quarter (Q4 2024): 80000 won
	create(&domain.Deal{DealID: "d5", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(80000), CreatedAt: day("2024-10-21"), ClosedAt: dayPtr("2024-11-10")})

	// outside both quarters, must not count
	create(&domain.Deal{DealID: "d6", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(999999), CreatedAt: day("2024-07-01"), ClosedAt: dayPtr("2024-08-01")})

	create(&domain.Target{Month: "2025-01", Target: 40000})
	create(&domain.Target{Month: "2025-02", Target: 40000})
	create(&domain.Target{Month: "2025-03", Target: 40000})

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100000.0, summary.CurrentQuarterRevenue)
	assert.Equal(t, 120000.0, summary.Target)
	assert.InDelta(t, -16.67, summary.GapPercent, 0.001)
	require.NotNil(t, summary.ChangePercent)
	assert.InDelta(t, 25.0, *summary.ChangePercent, 0.001)
	assert.Equal(t, "QoQ", summary.ChangeType)
	assert.Equal(t, "Q1 2025", summary.QuarterLabel)
}

func TestGetSummary_NoBaseline(t *testing.T) {
	svc, create := newMetricsService(t)

	create(&domain.Deal{DealID: "d1", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(50000), CreatedAt: day("2025-01-02"), ClosedAt: dayPtr("2025-01-20")})

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50000.0, summary.CurrentQuarterRevenue)
	assert.Equal(t, 0.0, summary.Target)
	assert.Equal(t, 0.0, summary.GapPercent, "gap is 0 when no target is set")
	assert.Nil(t, summary.ChangePercent, "no previous-quarter revenue means no comparable change")
}

func TestGetDrivers(t *testing.T) {
	svc, create := newMetricsService(t)

	// open pipeline: 50000 + nil + 25000
	create(&domain.Deal{DealID: "p1", AccountID: "a1", RepID: "r1", Stage: domain.DealStageProspecting,
		Amount: fptr(50000), CreatedAt: day("2025-01-10")})
	create(&domain.Deal{DealID: "p2", AccountID: "a1", RepID: "r1", Stage: domain.DealStageNegotiation,
		Amount: nil, CreatedAt: day("2025-01-11")})
	create(&domain.Deal{DealID: "p3", AccountID: "a2", RepID: "r1", Stage: domain.DealStageNegotiation,
		Amount: fptr(25000), CreatedAt: day("2025-01-12")})

	// current quarter: 2 won (30-day cycles), 2 lost
	create(&domain.Deal{DealID: "d1", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(60000), CreatedAt: day("2024-12-16"), ClosedAt: dayPtr("2025-01-15")})
	create(&domain.Deal{DealID: "d2", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(40000), CreatedAt: day("2025-01-06"), ClosedAt: dayPtr("2025-02-05")})
	create(&domain.Deal{DealID: "d3", AccountID: "a2", RepID: "r1", Stage: domain.DealStageClosedLost,
		Amount: fptr(15000), CreatedAt: day("2025-01-02"), ClosedAt: dayPtr("2025-01-20")})
	create(&domain.Deal{DealID: "d4", AccountID: "a2", RepID: "r1", Stage: domain.DealStageClosedLost,
		Amount: nil, CreatedAt: day("2025-01-03"), ClosedAt: dayPtr("2025-02-01")})

	// previous quarter: 1 won (20-day cycle), 3 lost
	create(&domain.Deal{DealID: "d5", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(80000), CreatedAt: day("2024-10-21"), ClosedAt: dayPtr("2024-11-10")})
	create(&domain.Deal{DealID: "d6", AccountID: "a2", RepID: "r1", Stage: domain.DealStageClosedLost,
		Amount: fptr(10000), CreatedAt: day("2024-10-01"), ClosedAt: dayPtr("2024-10-15")})
	create(&domain.Deal{DealID: "d7", AccountID: "a2", RepID: "r1", Stage: domain.DealStageClosedLost,
		Amount: fptr(10000), CreatedAt: day("2024-10-02"), ClosedAt: dayPtr("2024-11-15")})
	create(&domain.Deal{DealID: "d8", AccountID: "a2", RepID: "r1", Stage: domain.DealStageClosedLost,
		Amount: fptr(10000), CreatedAt: day("2024-10-03"), ClosedAt: dayPtr("2024-12-15")})

	drivers, err := svc.GetDrivers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 75000.0, drivers.PipelineSize)
	assert.Equal(t, 0.0, drivers.PipelineChangePercent)

	assert.Equal(t, 50.0, drivers.WinRatePercent)
	require.NotNil(t, drivers.WinRateChangePercent)
	assert.InDelta(t, 25.0, *drivers.WinRateChangePercent, 0.001, "50% now vs 25% last quarter, in points")

	assert.Equal(t, 50000.0, drivers.AverageDealSize)
	require.NotNil(t, drivers.AvgDealChangePercent)
	assert.InDelta(t, -37.5, *drivers.AvgDealChangePercent, 0.001)

	assert.Equal(t, 30, drivers.SalesCycleDays)
	assert.Equal(t, 10, drivers.SalesCycleChangeDays)
}

func TestGetDrivers_NilDeltasWithoutBaseline(t *testing.T) {
	svc, create := newMetricsService(t)

	create(&domain.Deal{DealID: "d1", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(30000), CreatedAt: day("2025-01-01"), ClosedAt: dayPtr("2025-01-21")})
	create(&domain.Deal{DealID: "d2", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedLost,
		Amount: fptr(10000), CreatedAt: day("2025-01-05"), ClosedAt: dayPtr("2025-02-01")})

	drivers, err := svc.GetDrivers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50.0, drivers.WinRatePercent)
	assert.Nil(t, drivers.WinRateChangePercent)
	assert.Nil(t, drivers.AvgDealChangePercent)
	assert.Equal(t, 20, drivers.SalesCycleDays)
	assert.Equal(t, 20, drivers.SalesCycleChangeDays, "previous cycle is 0 when nothing closed")
}

func TestGetDrivers_NullAndZeroAmountsExcludedFromAverage(t *testing.T) {
	svc, create := newMetricsService(t)

	create(&domain.Deal{DealID: "d1", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(50000), CreatedAt: day("2025-01-01"), ClosedAt: dayPtr("2025-01-15")})
	create(&domain.Deal{DealID: "d2", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: nil, CreatedAt: day("2025-01-02"), ClosedAt: dayPtr("2025-01-16")})
	create(&domain.Deal{DealID: "d3", AccountID: "a1", RepID: "r1", Stage: domain.DealStageClosedWon,
		Amount: fptr(0), CreatedAt: day("2025-01-03"), ClosedAt: dayPtr("2025-01-17")})

	drivers, err := svc.GetDrivers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50000.0, drivers.AverageDealSize)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50000.0, summary.CurrentQuarterRevenue, "null amounts count as 0 in revenue")
}
