package interfaces

import (
	"context"

	"github.com/bobmcallan/tally/internal/models"
)

// CryptoPriceClient fetches live crypto market data.
type CryptoPriceClient interface {
	// GetPrices returns current USD prices keyed by upper-case symbol.
	// A nil map with nil error means the provider throttled the request
	// and the caller should proceed without live prices.
	GetPrices(ctx context.Context, symbols []string) (map[string]float64, error)

	// GetMarkets returns market snapshots with 24h and 7d change for
	// the given symbols.
	GetMarkets(ctx context.Context, symbols []string) ([]models.CryptoQuote, error)
}

// EquityHistoryClient fetches end-of-day bars for an equity ticker.
type EquityHistoryClient interface {
	// GetHistory returns daily bars in ascending date order for the
	// inclusive range [from, to] (YYYY-MM-DD).
	GetHistory(ctx context.Context, symbol, from, to string) ([]models.EODBar, error)
}
