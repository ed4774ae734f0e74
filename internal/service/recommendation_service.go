package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/pipemetric/insight-api/internal/domain"
	"go.uber.org/zap"
)

// maxRecommendations caps the advice list returned to callers
const maxRecommendations = 5

// RecommendationService derives prioritized next-step advice from the
// metric and risk signals. Rules are evaluated independently, sorted by
// priority, and truncated.
type RecommendationService struct {
	metrics *MetricsService
	risks   *RiskService
	logger  *zap.Logger
}

func NewRecommendationService(metrics *MetricsService, risks *RiskService, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{
		metrics: metrics,
		risks:   risks,
		logger:  logger,
	}
}

type scoredRecommendation struct {
	priority int
	text     string
}

// GetRecommendations evaluates the rule set against the current dataset.
// The generic stale-deal rule is suppressed whenever the Enterprise-focused
// rule fires, so the two never appear together.
func (s *RecommendationService) GetRecommendations(ctx context.Context) (*domain.Recommendations, error) {
	staleDays := s.risks.analytics.StaleDays

	staleTotal, staleEnterprise, err := s.risks.StaleDealCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stale deals: %w", err)
	}

	var scored []scoredRecommendation
	enterpriseFired := false

	if staleEnterprise > 0 {
		enterpriseFired = true
		scored = append(scored, scoredRecommendation{
			priority: 1,
			text:     fmt.Sprintf("Focus on %d Enterprise deal(s) with no activity in the last %d days.", staleEnterprise, staleDays),
		})
	}

	underperformers, err := s.risks.UnderperformingReps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get underperforming reps: %w", err)
	}
	if len(underperformers) > 0 {
		scored = append(scored, scoredRecommendation{
			priority: 2,
			text:     fmt.Sprintf("Coach %s on win rate (below team average).", underperformers[0].Name),
		})
	}

	segment, segmentCount, err := s.risks.LowActivitySegmentLeader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get low-activity segments: %w", err)
	}
	if segmentCount > 0 {
		scored = append(scored, scoredRecommendation{
			priority: 3,
			text:     fmt.Sprintf("Increase activity for %s segment (%d account(s) with low engagement).", segment, segmentCount),
		})
	}

	summary, err := s.metrics.GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue summary: %w", err)
	}
	pipeline, err := s.metrics.dealRepo.PipelineValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline value: %w", err)
	}
	if summary.Target-summary.CurrentQuarterRevenue > 0 && pipeline > 0 {
		scored = append(scored, scoredRecommendation{
			priority: 4,
			text:     "Prioritize closing Negotiation-stage deals to reduce the revenue gap.",
		})
	}

	if staleTotal > 0 && !enterpriseFired {
		scored = append(scored, scoredRecommendation{
			priority: 5,
			text:     fmt.Sprintf("Re-engage %d stale deal(s) (no activity in %d+ days).", staleTotal, staleDays),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].priority < scored[j].priority
	})
	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}

	items := make([]domain.Recommendation, 0, len(scored))
	for _, r := range scored {
		items = append(items, domain.Recommendation{Text: r.text})
	}
	return &domain.Recommendations{Recommendations: items}, nil
}
