package advisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/storage"
)

type stubAggregator struct {
	result *models.PortfolioResult
}

func (s *stubAggregator) Aggregate(ctx context.Context, opts interfaces.AggregateOptions) (*models.PortfolioResult, error) {
	return s.result, nil
}

type stubAnalyzer struct {
	analysis *models.Analysis
}

func (s *stubAnalyzer) AnalyzeGoals(ctx context.Context) (*models.GoalAnalysis, error) {
	return s.analysis.Goals, nil
}

func (s *stubAnalyzer) AnalyzeAllocation(ctx context.Context) (*models.AllocationAnalysis, error) {
	return s.analysis.Allocation, nil
}

func (s *stubAnalyzer) MarketContext(ctx context.Context) (*models.MarketContext, error) {
	return s.analysis.Market, nil
}

func (s *stubAnalyzer) FullAnalysis(ctx context.Context) (*models.Analysis, error) {
	return s.analysis, nil
}

func newAdviceFixture(t *testing.T, analysis *models.Analysis) *Service {
	t.Helper()
	mgr, err := storage.NewManager(common.NewSilentLogger(), &common.StorageConfig{Path: t.TempDir()})
	require.NoError(t, err)

	portfolio := &models.PortfolioResult{
		AsOf:       "2026-08-26",
		TotalValue: 100000,
		ByCategory: map[models.Category]*models.CategoryBreakdown{
			models.CategoryRetirement: {Value: 40000, Pct: 40},
			models.CategoryCrypto:     {Value: 37000, Pct: 37},
		},
	}

	return NewService(&stubAggregator{result: portfolio}, &stubAnalyzer{analysis: analysis},
		mgr, common.NewDefaultConfig(), common.NewSilentLogger())
}

func TestGenerateAdviceStablePriorityOrder(t *testing.T) {
	// Sources generate, in emission order: one medium goal rec, one
	// high rebalance rec, a low and a medium opportunity, and a medium
	// surplus rec. The merged list must be high first, then the
	// mediums in their original relative order, then the low.
	analysis := &models.Analysis{
		AsOf: "2026-08-26",
		Goals: &models.GoalAnalysis{
			Goals: map[models.GoalTerm]*models.GoalProgress{
				models.GoalTermMedium: behindGoal(models.GoalTermMedium, 20, 1300, 800),
			},
			MonthlySurplus: 1000,
		},
		Allocation: &models.AllocationAnalysis{
			Current:     map[models.Category]float64{models.CategoryCrypto: 37, models.CategoryRetirement: 33},
			Recommended: map[models.Category]float64{models.CategoryCrypto: 25, models.CategoryRetirement: 40},
			Drift: map[models.Category]float64{
				models.CategoryRetirement: -7,
				models.CategoryCrypto:     12,
			},
			RebalanceNeeded: true,
		},
		Market: &models.MarketContext{
			Sentiment: models.SentimentFear,
			Opportunities: []models.MarketOpportunity{
				{Asset: "VOO.US", Magnitude: -6, Priority: models.PriorityLow, Suggestion: "Pullback"},
				{Asset: "ETH", Magnitude: -12, Priority: models.PriorityMedium, Suggestion: "Potential DCA"},
			},
		},
	}

	svc := newAdviceFixture(t, analysis)

	bundle, err := svc.GenerateAdvice(context.Background())
	require.NoError(t, err)

	priorities := make([]models.Priority, 0, len(bundle.Recommendations))
	types := make([]models.RecommendationType, 0, len(bundle.Recommendations))
	for _, rec := range bundle.Recommendations {
		priorities = append(priorities, rec.Priority)
		types = append(types, rec.Type)
	}

	assert.Equal(t, []models.Priority{
		models.PriorityHigh,
		models.PriorityMedium, models.PriorityMedium, models.PriorityMedium,
		models.PriorityLow,
	}, priorities)
	// Within the medium tier, source order is preserved: goal rec,
	// then opportunity, then surplus.
	assert.Equal(t, []models.RecommendationType{
		models.RecTypeRebalance,
		models.RecTypeSurplus, models.RecTypeOpportunity, models.RecTypeSurplus,
		models.RecTypeOpportunity,
	}, types)

	assert.Equal(t, 1, bundle.Summary.HighPriorityCount)
	assert.Equal(t, 5, bundle.Summary.TotalCount)
	assert.True(t, bundle.Summary.ActionRequired)
	assert.Equal(t, models.SentimentFear, bundle.Sentiment)
	assert.Equal(t, 1000.0, bundle.MonthlySurplus)
	assert.Equal(t, 100000.0, bundle.Portfolio.TotalValue)
}

func TestGenerateAdviceMissingMarket(t *testing.T) {
	analysis := &models.Analysis{
		Goals: &models.GoalAnalysis{
			Goals:          map[models.GoalTerm]*models.GoalProgress{},
			MonthlySurplus: 500,
		},
		Allocation: &models.AllocationAnalysis{
			Recommended: map[models.Category]float64{
				models.CategoryRetirement:      40,
				models.CategoryTaxableEquities: 20,
			},
			Drift: map[models.Category]float64{},
		},
	}

	svc := newAdviceFixture(t, analysis)

	bundle, err := svc.GenerateAdvice(context.Background())
	require.NoError(t, err)

	for _, rec := range bundle.Recommendations {
		assert.NotEqual(t, models.RecTypeOpportunity, rec.Type)
	}
}

func TestFilterByFocus(t *testing.T) {
	bundle := &models.AdviceBundle{
		Recommendations: []models.Recommendation{
			{Type: models.RecTypeSurplus, Priority: models.PriorityHigh},
			{Type: models.RecTypeRebalance, Priority: models.PriorityMedium},
			{Type: models.RecTypeOpportunity, Priority: models.PriorityLow},
			{Type: models.RecTypeWarning, Priority: models.PriorityHigh},
		},
		Summary: models.AdviceSummary{HighPriorityCount: 2, TotalCount: 4, ActionRequired: true},
	}

	t.Run("rebalance focus", func(t *testing.T) {
		got := FilterByFocus(bundle, "rebalance")
		require.Len(t, got.Recommendations, 1)
		assert.Equal(t, models.RecTypeRebalance, got.Recommendations[0].Type)
		assert.Equal(t, 0, got.Summary.HighPriorityCount)
		assert.False(t, got.Summary.ActionRequired)
	})

	t.Run("goals focus keeps surplus and warning recs", func(t *testing.T) {
		got := FilterByFocus(bundle, "goals")
		assert.Len(t, got.Recommendations, 2)
		assert.Equal(t, 2, got.Summary.HighPriorityCount)
	})

	t.Run("all leaves the bundle untouched", func(t *testing.T) {
		got := FilterByFocus(bundle, "all")
		assert.Len(t, got.Recommendations, 4)
	})
}
