package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/storage"
)

// stubPriceClient returns canned prices and counts calls.
type stubPriceClient struct {
	prices map[string]float64
	err    error
	calls  int
}

func (s *stubPriceClient) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	s.calls++
	return s.prices, s.err
}

func (s *stubPriceClient) GetMarkets(ctx context.Context, symbols []string) ([]models.CryptoQuote, error) {
	return nil, nil
}

type fixture struct {
	svc     *Service
	storage *storage.Manager
	prices  *stubPriceClient
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mgr, err := storage.NewManager(common.NewSilentLogger(), &common.StorageConfig{Path: t.TempDir()})
	require.NoError(t, err)

	prices := &stubPriceClient{prices: map[string]float64{"BTC": 60000, "ETH": 3000}}
	cfg := common.NewDefaultConfig()

	svc := NewService(mgr, prices, cfg, common.NewSilentLogger())

	f := &fixture{svc: svc, storage: mgr, prices: prices, now: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)}
	svc.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) seedSnapshot(t *testing.T, name string, acctType models.AccountType, date string, holdings []models.SnapshotHolding, cash float64) {
	t.Helper()
	require.NoError(t, f.storage.Snapshots().SaveSnapshot(&models.AccountSnapshot{
		AccountName:   name,
		AccountType:   acctType,
		StatementDate: date,
		Portfolio: models.SnapshotPortfolio{
			TotalValue: cash + sumValues(holdings),
			Cash:       cash,
			Holdings:   holdings,
		},
	}))
}

func sumValues(holdings []models.SnapshotHolding) float64 {
	var total float64
	for _, h := range holdings {
		total += h.Value
	}
	return total
}

func TestAggregateNoData(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Aggregate(context.Background(), interfaces.AggregateOptions{})
	assert.ErrorIs(t, err, ErrNoPortfolioData)
}

func TestAggregateCategorization(t *testing.T) {
	f := newFixture(t)

	f.seedSnapshot(t, "Roth IRA", models.AccountTypeRothIRA, "2026-08-20",
		[]models.SnapshotHolding{{Symbol: "VTI", Value: 30000}, {Symbol: "VXUS", Value: 10000}}, 0)
	f.seedSnapshot(t, "Brokerage", models.AccountTypeTaxable, "2026-08-20",
		[]models.SnapshotHolding{{Symbol: "QQQ", Value: 15000}, {Symbol: "IBIT", Quantity: 50, Value: 5000}}, 1000)
	f.seedSnapshot(t, "Megacorp 401k", models.AccountType401k, "2026-08-20",
		[]models.SnapshotHolding{{Symbol: "FXAIX", Value: 50000}}, 0)

	require.NoError(t, f.storage.Holdings().SaveHoldings(&models.HoldingsRecord{
		Crypto:       []models.CryptoHolding{{Symbol: "BTC", Quantity: 0.25}},
		BankAccounts: []models.BankAccount{{Name: "Ally Savings", Balance: 9000}},
		Other:        []models.OtherAsset{{Name: "HSA", Balance: 4000, Kind: "hsa"}},
		UpdatedAt:    "2026-08-25",
	}))

	result, err := f.svc.Aggregate(context.Background(), interfaces.AggregateOptions{IncludeLivePrices: true})
	require.NoError(t, err)

	// 40000 roth + 15000 brokerage + 50000 401k + 5000 IBIT + 1000 cash
	// + 15000 BTC + 9000 bank + 4000 HSA
	assert.Equal(t, 139000.0, result.TotalValue)

	byCat := result.ByCategory
	assert.Equal(t, 94000.0, byCat[models.CategoryRetirement].Value) // roth + 401k + HSA
	assert.Equal(t, 15000.0, byCat[models.CategoryTaxableEquities].Value)
	assert.Equal(t, 20000.0, byCat[models.CategoryCrypto].Value) // IBIT + BTC
	assert.Equal(t, 10000.0, byCat[models.CategoryCash].Value)

	// Percentages cover the whole portfolio.
	var pctTotal float64
	for _, b := range byCat {
		pctTotal += b.Pct
	}
	assert.InDelta(t, 100.0, pctTotal, 0.2)

	// Crypto ETF held in a taxable account is broken out as crypto.
	var ibit *models.Asset
	for i := range result.ByAsset {
		if result.ByAsset[i].Name == "IBIT (Brokerage)" {
			ibit = &result.ByAsset[i]
		}
	}
	require.NotNil(t, ibit)
	assert.Equal(t, models.CategoryCrypto, ibit.Category)

	// Assets are sorted by value descending.
	for i := 1; i < len(result.ByAsset); i++ {
		assert.GreaterOrEqual(t, result.ByAsset[i-1].Value, result.ByAsset[i].Value)
	}

	assert.Equal(t, models.PriceFreshnessLive, result.DataFreshness.CryptoPrices)
	assert.Equal(t, "2026-08-20", result.DataFreshness.Snapshots)
	assert.Equal(t, "2026-08-25", result.DataFreshness.Holdings)
	assert.Empty(t, result.Warnings)
}

func TestAggregateSkipsLivePrices(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.storage.Holdings().SaveHoldings(&models.HoldingsRecord{
		Crypto:       []models.CryptoHolding{{Symbol: "BTC", Quantity: 1}},
		BankAccounts: []models.BankAccount{{Name: "Checking", Balance: 500}},
		UpdatedAt:    "2026-08-26",
	}))

	result, err := f.svc.Aggregate(context.Background(), interfaces.AggregateOptions{IncludeLivePrices: false})
	require.NoError(t, err)

	assert.Equal(t, models.PriceFreshnessSkipped, result.DataFreshness.CryptoPrices)
	assert.Equal(t, 0, f.prices.calls)
	// Unpriced crypto stays out of the total.
	assert.Equal(t, 500.0, result.TotalValue)
}

func TestAggregatePricesUnavailable(t *testing.T) {
	f := newFixture(t)
	f.prices.prices = nil // throttled provider returns no data

	require.NoError(t, f.storage.Holdings().SaveHoldings(&models.HoldingsRecord{
		Crypto:       []models.CryptoHolding{{Symbol: "BTC", Quantity: 1}},
		BankAccounts: []models.BankAccount{{Name: "Checking", Balance: 500}},
		UpdatedAt:    "2026-08-26",
	}))

	result, err := f.svc.Aggregate(context.Background(), interfaces.AggregateOptions{IncludeLivePrices: true})
	require.NoError(t, err)

	assert.Equal(t, models.PriceFreshnessUnavailable, result.DataFreshness.CryptoPrices)
	assert.Equal(t, 500.0, result.TotalValue)
	assert.NotEmpty(t, result.Warnings)
}

func TestAggregateStaleWarnings(t *testing.T) {
	f := newFixture(t)

	// 40 days old vs a 30 day threshold.
	f.seedSnapshot(t, "Roth IRA", models.AccountTypeRothIRA, "2026-07-17",
		[]models.SnapshotHolding{{Symbol: "VTI", Value: 1000}}, 0)
	require.NoError(t, f.storage.Holdings().SaveHoldings(&models.HoldingsRecord{
		BankAccounts: []models.BankAccount{{Name: "Checking", Balance: 500}},
		UpdatedAt:    "2026-08-10", // 16 days vs a 7 day threshold
	}))

	result, err := f.svc.Aggregate(context.Background(), interfaces.AggregateOptions{})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "40 days old")
	assert.Contains(t, result.Warnings[1], "16 days ago")
}

func TestAggregateWarnsOnAbsentHoldings(t *testing.T) {
	f := newFixture(t)

	// Fresh snapshot, but no manual holdings record at all.
	f.seedSnapshot(t, "Roth IRA", models.AccountTypeRothIRA, "2026-08-25",
		[]models.SnapshotHolding{{Symbol: "VTI", Value: 1000}}, 0)

	result, err := f.svc.Aggregate(context.Background(), interfaces.AggregateOptions{})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "No manual holdings recorded")
	assert.Empty(t, result.DataFreshness.Holdings)
}

func TestAggregateCaching(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.storage.Holdings().SaveHoldings(&models.HoldingsRecord{
		Crypto:    []models.CryptoHolding{{Symbol: "BTC", Quantity: 1}},
		UpdatedAt: "2026-08-26",
	}))

	opts := interfaces.AggregateOptions{IncludeLivePrices: true}
	first, err := f.svc.Aggregate(context.Background(), opts)
	require.NoError(t, err)

	// Within the TTL the same instance comes back without refetching.
	second, err := f.svc.Aggregate(context.Background(), opts)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, f.prices.calls)

	// Different options bypass the cached entry.
	_, err = f.svc.Aggregate(context.Background(), interfaces.AggregateOptions{IncludeLivePrices: false})
	require.NoError(t, err)
	assert.Equal(t, 1, f.prices.calls)

	// Past the TTL the portfolio is recomputed.
	f.advance(31 * time.Second)
	third, err := f.svc.Aggregate(context.Background(), opts)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, f.prices.calls)
}
