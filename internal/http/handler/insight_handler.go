package handler

import (
	"net/http"

	"github.com/pipemetric/insight-api/internal/service"
	"go.uber.org/zap"
)

// InsightHandler exposes the analytics queries. Every endpoint is a
// read-only GET over the frozen dataset.
type InsightHandler struct {
	metrics         *service.MetricsService
	trend           *service.TrendService
	risks           *service.RiskService
	recommendations *service.RecommendationService
	logger          *zap.Logger
}

func NewInsightHandler(
	metrics *service.MetricsService,
	trend *service.TrendService,
	risks *service.RiskService,
	recommendations *service.RecommendationService,
	logger *zap.Logger,
) *InsightHandler {
	return &InsightHandler{
		metrics:         metrics,
		trend:           trend,
		risks:           risks,
		recommendations: recommendations,
		logger:          logger,
	}
}

// @Summary Get quarter revenue summary
// @Description Returns current-quarter revenue against target with the quarter-over-quarter change.
// @Description `changePercent` is null when the previous quarter closed no revenue.
// @Tags Metrics
// @Produce json
// @Success 200 {object} domain.Summary
// @Router /summary [get]
func (h *InsightHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.metrics.GetSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to get summary", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// @Summary Get KPI drivers
// @Description Returns pipeline size, win rate, average deal size and sales cycle length for the
// @Description current quarter, with quarter-over-quarter deltas. `winRateChangePercent` and
// @Description `avgDealChangePercent` are null when the previous quarter gives no baseline.
// @Tags Metrics
// @Produce json
// @Success 200 {object} domain.Drivers
// @Router /drivers [get]
func (h *InsightHandler) GetDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.metrics.GetDrivers(r.Context())
	if err != nil {
		h.logger.Error("failed to get drivers", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to compute drivers")
		return
	}

	respondJSON(w, http.StatusOK, drivers)
}

// @Summary Get risk factors
// @Description Returns the three risk signals: stale open deals, reps below the scaled team win
// @Description rate, and accounts with open deals but little recent activity. The deal and
// @Description account lists are capped at 50 entries each.
// @Tags Risk
// @Produce json
// @Success 200 {object} domain.RiskFactors
// @Router /risk-factors [get]
func (h *InsightHandler) GetRiskFactors(w http.ResponseWriter, r *http.Request) {
	risks, err := h.risks.GetRiskFactors(r.Context())
	if err != nil {
		h.logger.Error("failed to get risk factors", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to compute risk factors")
		return
	}

	respondJSON(w, http.StatusOK, risks)
}

// @Summary Get recommendations
// @Description Returns up to five prioritized next-step actions derived from the metric and risk
// @Description signals.
// @Tags Risk
// @Produce json
// @Success 200 {object} domain.Recommendations
// @Router /recommendations [get]
func (h *InsightHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.recommendations.GetRecommendations(r.Context())
	if err != nil {
		h.logger.Error("failed to get recommendations", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to compute recommendations")
		return
	}

	respondJSON(w, http.StatusOK, recs)
}

// @Summary Get revenue trend
// @Description Returns the trailing 6-calendar-month realized revenue and monthly targets as
// @Description parallel arrays, oldest month first.
// @Tags Metrics
// @Produce json
// @Success 200 {object} domain.RevenueTrend
// @Router /revenue-trend [get]
func (h *InsightHandler) GetRevenueTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.trend.GetRevenueTrend(r.Context())
	if err != nil {
		h.logger.Error("failed to get revenue trend", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to compute revenue trend")
		return
	}

	respondJSON(w, http.StatusOK, trend)
}
