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
	"gorm.io/gorm"
)

func newRecommendationService(t *testing.T) (*service.RecommendationService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	analytics := testAnalytics()
	logger := zap.NewNop()

	dealRepo := repository.NewDealRepository(db)
	targetRepo := repository.NewTargetRepository(db)
	metrics := service.NewMetricsService(dealRepo, targetRepo, analytics, logger)
	risks := service.NewRiskService(
		dealRepo,
		repository.NewActivityRepository(db),
		repository.NewAccountRepository(db),
		analytics,
		logger,
	)
	return service.NewRecommendationService(metrics, risks, logger), db
}

func texts(recs *domain.Recommendations) []string {
	out := make([]string, 0, len(recs.Recommendations))
	for _, r := range recs.Recommendations {
		out = append(out, r.Text)
	}
	return out
}

func TestGetRecommendations_EnterpriseStaleSuppressesGeneric(t *testing.T) {
	svc, db := newRecommendationService(t)

	seedAccount(t, db, "a1", "Globex", domain.SegmentEnterprise)
	// stale open Enterprise deal, last touched 50 days before the as-of date
	mustCreate(t, db, &domain.Deal{DealID: "d1", AccountID: "a1", RepID: "r1",
		Stage: domain.DealStageNegotiation, Amount: fptr(30000), CreatedAt: day("2024-11-01")})
	seedActivity(t, db, "act1", "d1", "2024-12-22")

	// quarter target with no closed revenue leaves a positive gap
	mustCreate(t, db, &domain.Target{Month: "2025-01", Target: 100000})

	recs, err := svc.GetRecommendations(context.Background())
	require.NoError(t, err)

	got := texts(recs)
	assert.Equal(t, []string{
		"Focus on 1 Enterprise deal(s) with no activity in the last 30 days.",
		"Increase activity for Enterprise segment (1 account(s) with low engagement).",
		"Prioritize closing Negotiation-stage deals to reduce the revenue gap.",
	}, got)

	for _, text := range got {
		assert.NotContains(t, text, "Re-engage", "generic stale advice is replaced by the Enterprise-focused one")
	}
}

func TestGetRecommendations_GenericStale(t *testing.T) {
	svc, db := newRecommendationService(t)

	seedAccount(t, db, "a1", "Initech", domain.SegmentSMB)
	mustCreate(t, db, &domain.Deal{DealID: "d1", AccountID: "a1", RepID: "r1",
		Stage: domain.DealStageProspecting, Amount: fptr(5000), CreatedAt: day("2024-12-01")})

	recs, err := svc.GetRecommendations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Increase activity for SMB segment (1 account(s) with low engagement).",
		"Re-engage 1 stale deal(s) (no activity in 30+ days).",
	}, texts(recs))
}

func TestGetRecommendations_CoachesFirstUnderperformer(t *testing.T) {
	svc, db := newRecommendationService(t)

	seedRep(t, db, "rA", "Al Reyes")
	seedRep(t, db, "rB", "Bo Lindgren")

	closed := func(id, repID string, stage domain.DealStage) {
		mustCreate(t, db, &domain.Deal{DealID: id, AccountID: "a1", RepID: repID,
			Stage: stage, Amount: fptr(1000), CreatedAt: day("2025-01-01"), ClosedAt: dayPtr("2025-01-20")})
	}
	for i := 0; i < 2; i++ {
		closed("a-won-"+string(rune('0'+i)), "rA", domain.DealStageClosedWon)
	}
	for i := 0; i < 8; i++ {
		closed("a-lost-"+string(rune('0'+i)), "rA", domain.DealStageClosedLost)
	}
	for i := 0; i < 4; i++ {
		closed("b-won-"+string(rune('0'+i)), "rB", domain.DealStageClosedWon)
	}
	for i := 0; i < 6; i++ {
		closed("b-lost-"+string(rune('0'+i)), "rB", domain.DealStageClosedLost)
	}

	recs, err := svc.GetRecommendations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Coach Al Reyes on win rate (below team average).",
	}, texts(recs))
}

func TestGetRecommendations_EmptyDataset(t *testing.T) {
	svc, _ := newRecommendationService(t)

	recs, err := svc.GetRecommendations(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, recs.Recommendations)
	assert.Empty(t, recs.Recommendations)
}
