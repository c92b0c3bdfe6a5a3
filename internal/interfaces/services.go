package interfaces

import (
	"context"

	"github.com/bobmcallan/tally/internal/models"
)

// AggregateOptions controls a single aggregation pass.
type AggregateOptions struct {
	// IncludeLivePrices fetches current crypto prices for manual
	// holdings. When false, crypto holdings are omitted and the result
	// marks prices as skipped.
	IncludeLivePrices bool
}

// AggregatorService builds the unified portfolio view.
type AggregatorService interface {
	// Aggregate merges snapshots, manual holdings and live prices into
	// a categorized portfolio. Identical option sets within the cache
	// TTL return the same result without recomputation.
	Aggregate(ctx context.Context, opts AggregateOptions) (*models.PortfolioResult, error)
}

// AnalyzerService computes goal, allocation and market analyses.
type AnalyzerService interface {
	AnalyzeGoals(ctx context.Context) (*models.GoalAnalysis, error)
	AnalyzeAllocation(ctx context.Context) (*models.AllocationAnalysis, error)
	MarketContext(ctx context.Context) (*models.MarketContext, error)

	// FullAnalysis runs all three analyses against one portfolio state.
	FullAnalysis(ctx context.Context) (*models.Analysis, error)
}

// AdvisorService synthesizes recommendations from the analyses.
type AdvisorService interface {
	GenerateAdvice(ctx context.Context) (*models.AdviceBundle, error)
}
