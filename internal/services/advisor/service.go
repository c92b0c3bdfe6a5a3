// Package advisor synthesizes the analyzer outputs into a prioritized,
// explainable recommendation list.
package advisor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// Service generates advice bundles. It never fails on missing analysis
// inputs: each absent input simply drops its recommendation source.
type Service struct {
	aggregator interfaces.AggregatorService
	analyzer   interfaces.AnalyzerService
	storage    interfaces.StorageManager
	config     *common.Config
	logger     *common.Logger
	now        func() time.Time
}

var _ interfaces.AdvisorService = (*Service)(nil)

// NewService creates a new advisor service.
func NewService(aggregator interfaces.AggregatorService, analyzer interfaces.AnalyzerService, storage interfaces.StorageManager, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		aggregator: aggregator,
		analyzer:   analyzer,
		storage:    storage,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock overrides the time source for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// GenerateAdvice runs the full pipeline and synthesizes all
// recommendation sources into one bundle.
func (s *Service) GenerateAdvice(ctx context.Context) (*models.AdviceBundle, error) {
	portfolio, err := s.aggregator.Aggregate(ctx, interfaces.AggregateOptions{IncludeLivePrices: true})
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.FullAnalysis(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.storage.Profile().GetProfile()
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		profile = &models.Profile{}
	}

	var recommendations []models.Recommendation
	var plan []models.SurplusAllocation

	if analysis.Goals != nil {
		recommendations = append(recommendations, goalRecommendations(analysis.Goals, &s.config.Advisor)...)
	}
	if analysis.Allocation != nil {
		recommendations = append(recommendations, allocationRecommendations(analysis.Allocation, &s.config.Advisor)...)
	}
	if analysis.Market != nil && analysis.Goals != nil {
		recommendations = append(recommendations, opportunityRecommendations(analysis.Market, analysis.Goals)...)
	}
	if analysis.Goals != nil && analysis.Allocation != nil {
		var surplusRecs []models.Recommendation
		surplusRecs, plan = surplusRecommendations(analysis.Goals, analysis.Allocation, profile, &s.config.Advisor)
		recommendations = append(recommendations, surplusRecs...)
	}

	// Stable sort: relative order within a tier follows source order.
	sort.SliceStable(recommendations, func(i, j int) bool {
		return models.PriorityRank[recommendations[i].Priority] < models.PriorityRank[recommendations[j].Priority]
	})

	bundle := &models.AdviceBundle{
		GeneratedAt:     s.now().Format(time.RFC3339),
		Portfolio:       portfolioSummary(portfolio),
		Recommendations: recommendations,
		SurplusPlan:     plan,
		DataFreshness:   portfolio.DataFreshness,
		Warnings:        portfolio.Warnings,
	}
	if analysis.Goals != nil {
		bundle.Goals = analysis.Goals.Goals
		bundle.MonthlySurplus = analysis.Goals.MonthlySurplus
	}
	if analysis.Market != nil {
		bundle.Sentiment = analysis.Market.Sentiment
	}

	for _, rec := range recommendations {
		if rec.Priority == models.PriorityHigh {
			bundle.Summary.HighPriorityCount++
		}
	}
	bundle.Summary.TotalCount = len(recommendations)
	bundle.Summary.ActionRequired = bundle.Summary.HighPriorityCount > 0

	s.logger.Info().
		Int("recommendations", bundle.Summary.TotalCount).
		Int("high_priority", bundle.Summary.HighPriorityCount).
		Msg("advice generated")

	return bundle, nil
}

func portfolioSummary(portfolio *models.PortfolioResult) models.PortfolioSummary {
	pct := make(map[models.Category]float64, len(portfolio.ByCategory))
	for cat, b := range portfolio.ByCategory {
		pct[cat] = b.Pct
	}
	return models.PortfolioSummary{
		TotalValue:    portfolio.TotalValue,
		AsOf:          portfolio.AsOf,
		ByCategoryPct: pct,
	}
}

// focusTypes maps an advice focus to the recommendation types it keeps.
var focusTypes = map[string][]models.RecommendationType{
	"goals":         {models.RecTypeSurplus, models.RecTypeWarning},
	"rebalance":     {models.RecTypeRebalance},
	"surplus":       {models.RecTypeSurplus},
	"opportunities": {models.RecTypeOpportunity},
}

// FilterByFocus narrows a bundle's recommendations to one focus area
// and recomputes the summary. Unknown focus values (including "all")
// leave the bundle untouched.
func FilterByFocus(bundle *models.AdviceBundle, focus string) *models.AdviceBundle {
	types, ok := focusTypes[focus]
	if !ok {
		return bundle
	}

	keep := make(map[models.RecommendationType]bool, len(types))
	for _, t := range types {
		keep[t] = true
	}

	filtered := make([]models.Recommendation, 0, len(bundle.Recommendations))
	for _, rec := range bundle.Recommendations {
		if keep[rec.Type] {
			filtered = append(filtered, rec)
		}
	}

	out := *bundle
	out.Recommendations = filtered
	out.Summary = models.AdviceSummary{TotalCount: len(filtered)}
	for _, rec := range filtered {
		if rec.Priority == models.PriorityHigh {
			out.Summary.HighPriorityCount++
		}
	}
	out.Summary.ActionRequired = out.Summary.HighPriorityCount > 0
	return &out
}
