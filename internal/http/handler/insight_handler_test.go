package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pipemetric/insight-api/internal/config"
	"github.com/pipemetric/insight-api/internal/database"
	"github.com/pipemetric/insight-api/internal/domain"
	"github.com/pipemetric/insight-api/internal/http/handler"
	"github.com/pipemetric/insight-api/internal/repository"
	"github.com/pipemetric/insight-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupHandler(t *testing.T) (*handler.InsightHandler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:handler_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	analytics := &config.AnalyticsConfig{
		AsOfDate:                        "2025-02-10",
		StaleDays:                       30,
		LowActivityThreshold:            2,
		UnderperformingWinRateThreshold: 0.8,
	}
	logger := zap.NewNop()

	dealRepo := repository.NewDealRepository(db)
	targetRepo := repository.NewTargetRepository(db)
	metrics := service.NewMetricsService(dealRepo, targetRepo, analytics, logger)
	trend := service.NewTrendService(dealRepo, targetRepo, analytics, logger)
	risks := service.NewRiskService(
		dealRepo,
		repository.NewActivityRepository(db),
		repository.NewAccountRepository(db),
		analytics,
		logger,
	)
	recs := service.NewRecommendationService(metrics, risks, logger)

	return handler.NewInsightHandler(metrics, trend, risks, recs, logger), db
}

func seedDeal(t *testing.T, db *gorm.DB, deal domain.Deal) {
	t.Helper()
	require.NoError(t, db.Create(&deal).Error)
}

func closedAt(s string) *time.Time {
	ts, _ := time.ParseInLocation("2006-01-02", s, time.UTC)
	return &ts
}

func TestGetSummaryEndpoint(t *testing.T) {
	h, db := setupHandler(t)

	amount := 50000.0
	seedDeal(t, db, domain.Deal{
		DealID: "d1", AccountID: "a1", RepID: "r1",
		Stage: domain.DealStageClosedWon, Amount: &amount,
		CreatedAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		ClosedAt:  closedAt("2025-01-15"),
	})
	require.NoError(t, db.Create(&domain.Target{Month: "2025-01", Target: 60000}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	rec := httptest.NewRecorder()
	h.GetSummary(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 50000.0, body["currentQuarterRevenue"])
	assert.Equal(t, 60000.0, body["target"])
	assert.Equal(t, "Q1 2025", body["quarterLabel"])
	assert.Equal(t, "QoQ", body["changeType"])
	assert.Nil(t, body["changePercent"], "no previous-quarter revenue")
}

func TestGetDriversEndpoint(t *testing.T) {
	h, db := setupHandler(t)

	amount := 30000.0
	seedDeal(t, db, domain.Deal{
		DealID: "d1", AccountID: "a1", RepID: "r1",
		Stage: domain.DealStageNegotiation, Amount: &amount,
		CreatedAt: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drivers", nil)
	rec := httptest.NewRecorder()
	h.GetDrivers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 30000.0, body["pipelineSize"])
	assert.Equal(t, 0.0, body["winRatePercent"])
	assert.Nil(t, body["winRateChangePercent"])
}

func TestGetRiskFactorsEndpoint_EmptyListsNotNull(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/risk-factors", nil)
	rec := httptest.NewRecorder()
	h.GetRiskFactors(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `[]`, string(body["staleDeals"]))
	assert.JSONEq(t, `[]`, string(body["underperformingReps"]))
	assert.JSONEq(t, `[]`, string(body["lowActivityAccounts"]))
}

func TestGetRecommendationsEndpoint(t *testing.T) {
	h, db := setupHandler(t)

	amount := 5000.0
	seedDeal(t, db, domain.Deal{
		DealID: "d1", AccountID: "a1", RepID: "r1",
		Stage: domain.DealStageProspecting, Amount: &amount,
		CreatedAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	rec := httptest.NewRecorder()
	h.GetRecommendations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.Recommendations
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Recommendations)
	assert.LessOrEqual(t, len(body.Recommendations), 5)
}

func TestGetRevenueTrendEndpoint(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/revenue-trend", nil)
	rec := httptest.NewRecorder()
	h.GetRevenueTrend(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.RevenueTrend
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Labels, 6)
	assert.Equal(t, "2024-09", body.Months[0])
	assert.Equal(t, "2025-02", body.Months[5])
}

func TestGetSummaryEndpoint_DatabaseDown(t *testing.T) {
	h, db := setupHandler(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	rec := httptest.NewRecorder()
	h.GetSummary(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrorTypeInternal, apiErr.Type)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}
