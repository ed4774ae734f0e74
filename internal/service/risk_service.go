package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/pipemetric/insight-api/internal/config"
	"github.com/pipemetric/insight-api/internal/domain"
	"github.com/pipemetric/insight-api/internal/quarter"
	"github.com/pipemetric/insight-api/internal/repository"
	"go.uber.org/zap"
)

// riskListCap bounds the stale-deal and low-activity result lists
const riskListCap = 50

// RiskService detects the three independent risk signals: stale open deals,
// underperforming reps, and low-activity accounts. Each query is recomputed
// per call against the frozen dataset.
type RiskService struct {
	dealRepo     *repository.DealRepository
	activityRepo *repository.ActivityRepository
	accountRepo  *repository.AccountRepository
	analytics    *config.AnalyticsConfig
	logger       *zap.Logger
}

func NewRiskService(
	dealRepo *repository.DealRepository,
	activityRepo *repository.ActivityRepository,
	accountRepo *repository.AccountRepository,
	analytics *config.AnalyticsConfig,
	logger *zap.Logger,
) *RiskService {
	return &RiskService{
		dealRepo:     dealRepo,
		activityRepo: activityRepo,
		accountRepo:  accountRepo,
		analytics:    analytics,
		logger:       logger,
	}
}

// GetRiskFactors assembles all three signals for the risk-factors query
func (s *RiskService) GetRiskFactors(ctx context.Context) (*domain.RiskFactors, error) {
	staleDeals, err := s.StaleDeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale deals: %w", err)
	}

	reps, err := s.UnderperformingReps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get underperforming reps: %w", err)
	}

	accounts, err := s.LowActivityAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get low-activity accounts: %w", err)
	}

	return &domain.RiskFactors{
		StaleDeals:          staleDeals,
		UnderperformingReps: reps,
		LowActivityAccounts: accounts,
	}, nil
}

// staleEntry pairs an open deal with its fractional staleness in days
type staleEntry struct {
	row  repository.OpenDealActivity
	days float64
}

// staleEntries returns every open deal whose days since last activity
// strictly exceed the configured threshold. A deal with no activities falls
// back to its created_at as the last-touched timestamp.
func (s *RiskService) staleEntries(ctx context.Context) ([]staleEntry, error) {
	rows, err := s.dealRepo.OpenDealsWithLastActivity(ctx)
	if err != nil {
		return nil, err
	}

	asOf := s.analytics.AsOf()
	threshold := float64(s.analytics.StaleDays)

	var entries []staleEntry
	for _, row := range rows {
		last := row.CreatedAt
		if row.LastActivityAt != nil {
			last = *row.LastActivityAt
		}
		days := asOf.Sub(last).Hours() / 24
		if days > threshold {
			entries = append(entries, staleEntry{row: row, days: days})
		}
	}
	return entries, nil
}

// StaleDeals returns the stale open deals sorted most-stale first, capped
// at 50. The rep name falls back to the raw rep_id when unresolvable.
func (s *RiskService) StaleDeals(ctx context.Context) ([]domain.StaleDeal, error) {
	entries, err := s.staleEntries(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].days > entries[j].days
	})
	if len(entries) > riskListCap {
		entries = entries[:riskListCap]
	}

	deals := make([]domain.StaleDeal, 0, len(entries))
	for _, e := range entries {
		repName := e.row.RepName
		if repName == "" {
			repName = e.row.RepID
		}
		deals = append(deals, domain.StaleDeal{
			DealID:            e.row.DealID,
			AccountID:         e.row.AccountID,
			RepID:             e.row.RepID,
			RepName:           repName,
			Amount:            e.row.Amount,
			DaysSinceActivity: roundDays(e.days),
		})
	}
	return deals, nil
}

// StaleDealCounts returns the total stale-deal count and the count within
// the Enterprise segment, for the recommendation heuristics
func (s *RiskService) StaleDealCounts(ctx context.Context) (total, enterprise int, err error) {
	entries, err := s.staleEntries(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, e := range entries {
		total++
		if e.row.Segment == domain.SegmentEnterprise {
			enterprise++
		}
	}
	return total, enterprise, nil
}

// UnderperformingReps flags reps whose current-quarter win rate sits
// strictly below the team average scaled by the configured fraction. Only
// reps with at least one closed deal this quarter are considered, and the
// team average must itself be positive.
func (s *RiskService) UnderperformingReps(ctx context.Context) ([]domain.UnderperformingRep, error) {
	from, to := quarter.DateRange(s.analytics.AsOf())
	rows, err := s.dealRepo.WinLossByRepBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var teamWon, teamTotal int64
	for _, row := range rows {
		teamWon += row.Won
		teamTotal += row.Won + row.Lost
	}

	teamRate := 0.0
	if teamTotal > 0 {
		teamRate = float64(teamWon) / float64(teamTotal)
	}
	minRate := teamRate * s.analytics.UnderperformingWinRateThreshold

	flagged := make([]domain.UnderperformingRep, 0)
	if teamRate <= 0 {
		return flagged, nil
	}

	for _, row := range rows {
		total := row.Won + row.Lost
		if total == 0 {
			continue
		}
		rate := float64(row.Won) / float64(total)
		if rate < minRate {
			name := row.RepName
			if name == "" {
				name = row.RepID
			}
			flagged = append(flagged, domain.UnderperformingRep{
				RepID:          row.RepID,
				Name:           name,
				WinRatePercent: round2(rate * 100),
				TeamAvgPercent: round2(teamRate * 100),
			})
		}
	}
	return flagged, nil
}

// lowActivityWindowDays is the trailing window for account engagement
const lowActivityWindowDays = 30

// lowActivityAccounts returns every account with open deals whose recent
// activity count falls below the configured minimum, unsorted
func (s *RiskService) lowActivityAccounts(ctx context.Context) ([]domain.LowActivityAccount, error) {
	accounts, err := s.accountRepo.WithOpenDeals(ctx)
	if err != nil {
		return nil, err
	}

	since := s.analytics.AsOf().AddDate(0, 0, -lowActivityWindowDays)
	counts, err := s.activityRepo.CountRecentOnOpenDeals(ctx, since)
	if err != nil {
		return nil, err
	}

	countByAccount := make(map[string]int64, len(counts))
	for _, c := range counts {
		countByAccount[c.AccountID] = c.Count
	}

	var low []domain.LowActivityAccount
	for _, a := range accounts {
		count := countByAccount[a.AccountID]
		if count < int64(s.analytics.LowActivityThreshold) {
			name := a.Name
			if name == "" {
				name = a.AccountID
			}
			low = append(low, domain.LowActivityAccount{
				AccountID:     a.AccountID,
				Name:          name,
				Segment:       a.Segment,
				ActivityCount: int(count),
			})
		}
	}
	return low, nil
}

// LowActivityAccounts returns low-engagement accounts sorted by ascending
// activity count, capped at 50
func (s *RiskService) LowActivityAccounts(ctx context.Context) ([]domain.LowActivityAccount, error) {
	low, err := s.lowActivityAccounts(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(low, func(i, j int) bool {
		return low[i].ActivityCount < low[j].ActivityCount
	})
	if len(low) > riskListCap {
		low = low[:riskListCap]
	}
	if low == nil {
		low = []domain.LowActivityAccount{}
	}
	return low, nil
}

// LowActivitySegmentLeader returns the segment with the most low-activity
// accounts and that count; count is 0 when no segment qualifies
func (s *RiskService) LowActivitySegmentLeader(ctx context.Context) (domain.AccountSegment, int, error) {
	low, err := s.lowActivityAccounts(ctx)
	if err != nil {
		return "", 0, err
	}

	counts := make(map[domain.AccountSegment]int)
	for _, a := range low {
		counts[a.Segment]++
	}

	var leader domain.AccountSegment
	best := 0
	for segment, n := range counts {
		if n > best {
			leader = segment
			best = n
		}
	}
	return leader, best, nil
}
