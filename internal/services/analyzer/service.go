// Package analyzer computes goal progress, allocation drift and market
// context over the aggregated portfolio.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// Service runs the three analyses. Each analysis is pure given its
// inputs; all shared state lives in the aggregator's cache.
type Service struct {
	aggregator    interfaces.AggregatorService
	storage       interfaces.StorageManager
	cryptoPrice   interfaces.CryptoPriceClient
	equityHistory interfaces.EquityHistoryClient
	config        *common.Config
	logger        *common.Logger
	now           func() time.Time
}

var _ interfaces.AnalyzerService = (*Service)(nil)

// NewService creates a new analyzer service.
func NewService(aggregator interfaces.AggregatorService, storage interfaces.StorageManager, cryptoPrice interfaces.CryptoPriceClient, equityHistory interfaces.EquityHistoryClient, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		aggregator:    aggregator,
		storage:       storage,
		cryptoPrice:   cryptoPrice,
		equityHistory: equityHistory,
		config:        config,
		logger:        logger,
		now:           time.Now,
	}
}

// SetClock overrides the time source for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// loadProfile returns the stored profile, or an empty one when none
// has been saved: analyses still run, reporting goals as not set.
func (s *Service) loadProfile() (*models.Profile, error) {
	profile, err := s.storage.Profile().GetProfile()
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		profile = &models.Profile{}
	}
	return profile, nil
}

// AnalyzeGoals reports progress toward each goal term.
func (s *Service) AnalyzeGoals(ctx context.Context) (*models.GoalAnalysis, error) {
	portfolio, err := s.aggregator.Aggregate(ctx, interfaces.AggregateOptions{IncludeLivePrices: true})
	if err != nil {
		return nil, err
	}
	profile, err := s.loadProfile()
	if err != nil {
		return nil, err
	}

	analysis := buildGoalAnalysis(portfolio, profile, s.now().Format("2006-01"))
	s.logger.Debug().
		Int("on_track", analysis.Summary.GoalsOnTrack).
		Int("behind", analysis.Summary.GoalsBehind).
		Msg("goal analysis complete")
	return analysis, nil
}

// AnalyzeAllocation compares the current allocation with the
// personalized recommendation.
func (s *Service) AnalyzeAllocation(ctx context.Context) (*models.AllocationAnalysis, error) {
	portfolio, err := s.aggregator.Aggregate(ctx, interfaces.AggregateOptions{IncludeLivePrices: true})
	if err != nil {
		return nil, err
	}
	profile, err := s.loadProfile()
	if err != nil {
		return nil, err
	}

	goals := buildGoalAnalysis(portfolio, profile, s.now().Format("2006-01"))
	return buildAllocationAnalysis(portfolio, profile, goals, s.config), nil
}

// MarketContext fetches reference market data. Always returns a
// best-effort context; fetch failures are recorded, not raised.
func (s *Service) MarketContext(ctx context.Context) (*models.MarketContext, error) {
	return s.buildMarketContext(ctx), nil
}

// FullAnalysis runs goals, allocation and market context against a
// single portfolio state.
func (s *Service) FullAnalysis(ctx context.Context) (*models.Analysis, error) {
	portfolio, err := s.aggregator.Aggregate(ctx, interfaces.AggregateOptions{IncludeLivePrices: true})
	if err != nil {
		return nil, err
	}
	profile, err := s.loadProfile()
	if err != nil {
		return nil, err
	}

	goals := buildGoalAnalysis(portfolio, profile, s.now().Format("2006-01"))
	allocation := buildAllocationAnalysis(portfolio, profile, goals, s.config)
	market := s.buildMarketContext(ctx)

	return &models.Analysis{
		AsOf:       portfolio.AsOf,
		Goals:      goals,
		Allocation: allocation,
		Market:     market,
	}, nil
}
