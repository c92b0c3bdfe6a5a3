// Package models defines data structures for Tally
package models

// Category is one of the four fixed portfolio buckets.
type Category string

const (
	CategoryRetirement      Category = "retirement"
	CategoryTaxableEquities Category = "taxable_equities"
	CategoryCrypto          Category = "crypto"
	CategoryCash            Category = "cash"
)

// CategoryOrder is the canonical evaluation and display order for categories.
var CategoryOrder = []Category{
	CategoryRetirement,
	CategoryTaxableEquities,
	CategoryCrypto,
	CategoryCash,
}

var categoryNames = map[Category]string{
	CategoryRetirement:      "Retirement",
	CategoryTaxableEquities: "Taxable Equities",
	CategoryCrypto:          "Crypto",
	CategoryCash:            "Cash & Equivalents",
}

// DisplayName returns the human-readable name for a category.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// AssetSource identifies where an asset's value came from.
type AssetSource string

const (
	AssetSourceSnapshot AssetSource = "snapshot"
	AssetSourceHoldings AssetSource = "holdings"
)

// PriceFreshness describes the state of live price data in a result.
type PriceFreshness string

const (
	PriceFreshnessLive        PriceFreshness = "live"
	PriceFreshnessSkipped     PriceFreshness = "skipped"     // caller opted out
	PriceFreshnessUnavailable PriceFreshness = "unavailable" // fetch failed or returned nothing
)

// AssetDetails carries optional display detail for an asset.
type AssetDetails struct {
	TopHoldings []string `json:"top_holdings,omitempty"`
	Symbol      string   `json:"symbol,omitempty"`
	Quantity    float64  `json:"quantity,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Asset is a single categorized position in the unified portfolio.
type Asset struct {
	Name     string        `json:"name"`
	Category Category      `json:"category"`
	Value    float64       `json:"value"`
	Source   AssetSource   `json:"source"`
	AsOf     string        `json:"as_of,omitempty"` // YYYY-MM-DD
	Details  *AssetDetails `json:"details,omitempty"`
}

// CategoryBreakdown summarizes a category's share of the portfolio.
type CategoryBreakdown struct {
	Value  float64  `json:"value"`
	Pct    float64  `json:"pct"`
	Assets []string `json:"assets"`
}

// DataFreshness reports how recent each data source is. Dates are
// YYYY-MM-DD; an empty string means the source was absent.
type DataFreshness struct {
	Snapshots    string         `json:"snapshots,omitempty"`
	Holdings     string         `json:"holdings,omitempty"`
	CryptoPrices PriceFreshness `json:"crypto_prices"`
}

// PortfolioResult is the unified portfolio view produced by the aggregator.
// Results are never mutated after construction; the aggregator cache hands
// the same instance to concurrent callers.
type PortfolioResult struct {
	AsOf          string                          `json:"as_of"` // YYYY-MM-DD
	TotalValue    float64                         `json:"total_value"`
	ByCategory    map[Category]*CategoryBreakdown `json:"by_category"`
	ByAsset       []Asset                         `json:"by_asset"`
	DataFreshness DataFreshness                   `json:"data_freshness"`
	Warnings      []string                        `json:"warnings,omitempty"`
}
