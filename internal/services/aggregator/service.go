// Package aggregator merges account snapshots, manual holdings and live
// crypto prices into a single categorized portfolio view.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// ErrNoPortfolioData is returned when neither snapshots nor manual
// holdings exist.
var ErrNoPortfolioData = errors.New("no portfolio data found: import a statement or add holdings")

// Service aggregates all data sources into a unified portfolio.
// Results are cached briefly so the analyzer and advisor can each pull
// the portfolio without recomputing it.
type Service struct {
	storage     interfaces.StorageManager
	cryptoPrice interfaces.CryptoPriceClient
	config      *common.Config
	logger      *common.Logger
	cache       *common.TTLCache[*models.PortfolioResult]
	etfSymbols  map[string]bool
	now         func() time.Time
}

var _ interfaces.AggregatorService = (*Service)(nil)

// NewService creates a new aggregator service.
func NewService(storage interfaces.StorageManager, cryptoPrice interfaces.CryptoPriceClient, config *common.Config, logger *common.Logger) *Service {
	etfs := make(map[string]bool, len(config.Portfolio.CryptoETFSymbols))
	for _, sym := range config.Portfolio.CryptoETFSymbols {
		etfs[strings.ToUpper(sym)] = true
	}

	return &Service{
		storage:     storage,
		cryptoPrice: cryptoPrice,
		config:      config,
		logger:      logger,
		cache:       common.NewTTLCache[*models.PortfolioResult](config.Portfolio.GetCacheTTL()),
		etfSymbols:  etfs,
		now:         time.Now,
	}
}

// SetClock overrides the time source for tests. The cache follows the
// same clock.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
	s.cache.SetClock(now)
}

// Aggregate builds the unified portfolio view. Calls with the same
// options within the cache TTL return the cached result.
func (s *Service) Aggregate(ctx context.Context, opts interfaces.AggregateOptions) (*models.PortfolioResult, error) {
	cacheKey := strconv.FormatBool(opts.IncludeLivePrices)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.logger.Debug().Str("key", cacheKey).Msg("portfolio cache hit")
		return cached, nil
	}

	snapshots, err := s.storage.Snapshots().LatestByAccount()
	if err != nil {
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}
	holdings, err := s.storage.Holdings().GetHoldings()
	if err != nil {
		return nil, fmt.Errorf("loading holdings: %w", err)
	}

	if len(snapshots) == 0 && holdings.IsEmpty() {
		return nil, ErrNoPortfolioData
	}

	result := &models.PortfolioResult{
		AsOf: s.now().Format("2006-01-02"),
	}

	prices := s.fetchPrices(ctx, opts, holdings, result)
	s.checkFreshness(snapshots, holdings, result)

	assets := s.buildAssets(snapshots, holdings, prices)
	result.ByAsset = assets

	var total float64
	for _, a := range assets {
		total += a.Value
	}
	result.TotalValue = math.Round(total*100) / 100
	result.ByCategory = buildCategorySummary(assets, total)

	s.cache.Put(cacheKey, result)
	s.logger.Info().
		Float64("total", result.TotalValue).
		Int("assets", len(assets)).
		Msg("portfolio aggregated")

	return result, nil
}

// fetchPrices pulls live crypto prices when requested and records the
// price freshness on the result. A failed or throttled fetch degrades
// to an unavailable marker rather than failing aggregation.
func (s *Service) fetchPrices(ctx context.Context, opts interfaces.AggregateOptions, holdings *models.HoldingsRecord, result *models.PortfolioResult) map[string]float64 {
	if !opts.IncludeLivePrices {
		result.DataFreshness.CryptoPrices = models.PriceFreshnessSkipped
		return nil
	}

	symbols := make([]string, 0, len(holdings.Crypto))
	for _, h := range holdings.Crypto {
		symbols = append(symbols, h.Symbol)
	}
	if len(symbols) == 0 {
		result.DataFreshness.CryptoPrices = models.PriceFreshnessLive
		return nil
	}

	prices, err := s.cryptoPrice.GetPrices(ctx, symbols)
	if err != nil {
		s.logger.Warn().Err(err).Msg("crypto price fetch failed")
	}
	if len(prices) == 0 {
		result.DataFreshness.CryptoPrices = models.PriceFreshnessUnavailable
		result.Warnings = append(result.Warnings,
			"Live crypto prices unavailable; crypto holdings are excluded from totals.")
		return nil
	}

	result.DataFreshness.CryptoPrices = models.PriceFreshnessLive
	return prices
}

// checkFreshness records source dates and appends staleness warnings.
func (s *Service) checkFreshness(snapshots map[string]*models.AccountSnapshot, holdings *models.HoldingsRecord, result *models.PortfolioResult) {
	today := s.now()

	if len(snapshots) == 0 {
		result.Warnings = append(result.Warnings,
			"No account snapshots found. Import a brokerage statement to include those accounts.")
	} else {
		var latest string
		for _, snap := range snapshots {
			if snap.StatementDate > latest {
				latest = snap.StatementDate
			}
		}
		result.DataFreshness.Snapshots = latest
		if d, err := time.Parse("2006-01-02", latest); err == nil {
			daysOld := int(today.Sub(d).Hours() / 24)
			if daysOld > s.config.Portfolio.SnapshotStaleDays {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Account snapshots are %d days old. Consider importing a newer statement.", daysOld))
			}
		}
	}

	if holdings.UpdatedAt != "" {
		result.DataFreshness.Holdings = holdings.UpdatedAt
		if d, err := time.Parse("2006-01-02", holdings.UpdatedAt); err == nil {
			daysOld := int(today.Sub(d).Hours() / 24)
			if daysOld > s.config.Portfolio.HoldingsStaleDays {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Holdings last updated %d days ago. Consider updating bank balances.", daysOld))
			}
		}
	} else {
		result.Warnings = append(result.Warnings,
			"No manual holdings recorded. Add bank and crypto balances to complete the picture.")
	}
}

// buildAssets flattens all sources into the asset list, sorted by value
// descending.
func (s *Service) buildAssets(snapshots map[string]*models.AccountSnapshot, holdings *models.HoldingsRecord, prices map[string]float64) []models.Asset {
	var assets []models.Asset

	for _, snap := range snapshots {
		assets = append(assets, s.snapshotAssets(snap)...)
	}

	// Manual crypto: valued only when a live price is available.
	for _, h := range holdings.Crypto {
		price, ok := prices[strings.ToUpper(h.Symbol)]
		if !ok || price <= 0 {
			continue
		}
		value := h.Quantity * price
		if value <= 0 {
			continue
		}
		assets = append(assets, models.Asset{
			Name:     strings.ToUpper(h.Symbol),
			Category: models.CategoryCrypto,
			Value:    value,
			Source:   models.AssetSourceHoldings,
			AsOf:     holdings.UpdatedAt,
			Details: &models.AssetDetails{
				Symbol:   strings.ToUpper(h.Symbol),
				Quantity: h.Quantity,
				Price:    price,
				Notes:    h.Wallet,
			},
		})
	}

	for _, b := range holdings.BankAccounts {
		if b.Balance <= 0 {
			continue
		}
		assets = append(assets, models.Asset{
			Name:     b.Name,
			Category: models.CategoryCash,
			Value:    b.Balance,
			Source:   models.AssetSourceHoldings,
			AsOf:     holdings.UpdatedAt,
		})
	}

	for _, o := range holdings.Other {
		if o.Balance <= 0 {
			continue
		}
		category := models.CategoryCash
		if o.IsRetirement() {
			category = models.CategoryRetirement
		}
		assets = append(assets, models.Asset{
			Name:     o.Name,
			Category: category,
			Value:    o.Balance,
			Source:   models.AssetSourceHoldings,
			AsOf:     holdings.UpdatedAt,
		})
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Value > assets[j].Value })
	return assets
}

// snapshotAssets splits one account snapshot into its asset rows:
// pooled securities, crypto ETFs broken out individually, and cash.
func (s *Service) snapshotAssets(snap *models.AccountSnapshot) []models.Asset {
	var assets []models.Asset

	var securitiesValue float64
	var topHoldings []string

	for _, h := range snap.Portfolio.Holdings {
		sym := strings.ToUpper(h.Symbol)
		if s.etfSymbols[sym] {
			// Crypto ETFs count as crypto exposure regardless of the
			// account that holds them.
			if h.Value > 0 {
				assets = append(assets, models.Asset{
					Name:     fmt.Sprintf("%s (%s)", sym, snap.AccountName),
					Category: models.CategoryCrypto,
					Value:    h.Value,
					Source:   models.AssetSourceSnapshot,
					AsOf:     snap.StatementDate,
					Details: &models.AssetDetails{
						Symbol:   sym,
						Quantity: h.Quantity,
					},
				})
			}
			continue
		}
		securitiesValue += h.Value
		if len(topHoldings) < 3 {
			topHoldings = append(topHoldings, h.Symbol)
		}
	}

	if securitiesValue > 0 {
		category := models.CategoryTaxableEquities
		if snap.AccountType.IsRetirement() {
			category = models.CategoryRetirement
		}
		assets = append(assets, models.Asset{
			Name:     snap.AccountName,
			Category: category,
			Value:    securitiesValue,
			Source:   models.AssetSourceSnapshot,
			AsOf:     snap.StatementDate,
			Details:  &models.AssetDetails{TopHoldings: topHoldings},
		})
	}

	if snap.Portfolio.Cash > 0 {
		assets = append(assets, models.Asset{
			Name:     fmt.Sprintf("Cash (%s)", snap.AccountName),
			Category: models.CategoryCash,
			Value:    snap.Portfolio.Cash,
			Source:   models.AssetSourceSnapshot,
			AsOf:     snap.StatementDate,
		})
	}

	return assets
}

// buildCategorySummary rolls assets up into the four fixed categories.
// Every category appears even when empty.
func buildCategorySummary(assets []models.Asset, total float64) map[models.Category]*models.CategoryBreakdown {
	byCategory := make(map[models.Category]*models.CategoryBreakdown, len(models.CategoryOrder))
	for _, cat := range models.CategoryOrder {
		byCategory[cat] = &models.CategoryBreakdown{Assets: []string{}}
	}

	for _, a := range assets {
		b, ok := byCategory[a.Category]
		if !ok {
			continue
		}
		b.Value += a.Value
		b.Assets = append(b.Assets, a.Name)
	}

	if total > 0 {
		for _, b := range byCategory {
			b.Pct = math.Round(b.Value/total*1000) / 10
		}
	}

	return byCategory
}
