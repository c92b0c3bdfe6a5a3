// Package coingecko provides a client for the CoinGecko public API.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// symbolToID maps common ticker symbols to CoinGecko coin ids.
var symbolToID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"DOGE":  "dogecoin",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"XRP":   "ripple",
	"LTC":   "litecoin",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"XLM":   "stellar",
}

var idToSymbol = func() map[string]string {
	m := make(map[string]string, len(symbolToID))
	for sym, id := range symbolToID {
		m[id] = sym
	}
	return m
}()

// APIError represents an error response from the CoinGecko API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coingecko API error %d: %s", e.StatusCode, e.Message)
}

// IsThrottled reports whether the error is a 429 rate-limit response.
func IsThrottled(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// Client calls the CoinGecko API with rate limiting, retry on
// throttling, and a short-lived price cache.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	retry       common.RetryConfig
	priceCache  *common.TTLCache[map[string]float64]
	logger      *common.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit sets the request rate in requests per minute.
func WithRateLimit(perMinute int) ClientOption {
	return func(c *Client) {
		if perMinute > 0 {
			c.rateLimiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
		}
	}
}

// WithPriceCacheTTL sets how long simple price lookups are cached.
func WithPriceCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) { c.priceCache = common.NewTTLCache[map[string]float64](ttl) }
}

// WithRetry overrides the retry policy for market data requests.
func WithRetry(cfg common.RetryConfig) ClientOption {
	return func(c *Client) { c.retry = cfg }
}

// WithLogger sets the client logger.
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a CoinGecko client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Limit(0.5), 1), // free tier: ~30/min
		retry:       common.DefaultRetryConfig,
		priceCache:  common.NewTTLCache[map[string]float64](60 * time.Second),
		logger:      common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ interfaces.CryptoPriceClient = (*Client)(nil)

// GetPrices returns current USD prices keyed by upper-case symbol.
// Results are cached briefly so repeated aggregations within the TTL
// do not hit the API. A throttled response returns (nil, nil): the
// aggregator degrades gracefully rather than failing the whole pass.
func (c *Client) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	ids := coinIDs(symbols)
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}
	cacheKey := strings.Join(ids, ",")
	if cached, ok := c.priceCache.Get(cacheKey); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("ids", cacheKey)
	params.Set("vs_currencies", "usd")

	var raw map[string]map[string]float64
	err := c.get(ctx, "/simple/price", params, &raw)
	if err != nil {
		if IsThrottled(err) {
			c.logger.Warn().Msg("coingecko rate limited, proceeding without live prices")
			return nil, nil
		}
		return nil, err
	}

	prices := make(map[string]float64, len(raw))
	for id, cur := range raw {
		if sym, ok := idToSymbol[id]; ok {
			prices[sym] = cur["usd"]
		}
	}
	c.priceCache.Put(cacheKey, prices)
	return prices, nil
}

type marketRow struct {
	ID             string   `json:"id"`
	Symbol         string   `json:"symbol"`
	CurrentPrice   float64  `json:"current_price"`
	Change7dInCur  *float64 `json:"price_change_percentage_7d_in_currency"`
	Change30dInCur *float64 `json:"price_change_percentage_30d_in_currency"`
}

// GetMarkets returns market snapshots with 7d and 30d movement. Unlike
// GetPrices, throttling here is retried: market context is requested
// far less often than prices.
func (c *Client) GetMarkets(ctx context.Context, symbols []string) ([]models.CryptoQuote, error) {
	ids := coinIDs(symbols)
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currency", "usd")
	params.Set("price_change_percentage", "7d,30d")

	var rows []marketRow
	err := common.Retry(ctx, c.retry, IsThrottled, func(ctx context.Context) error {
		return c.get(ctx, "/coins/markets", params, &rows)
	})
	if err != nil {
		return nil, err
	}

	quotes := make([]models.CryptoQuote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, models.CryptoQuote{
			Symbol:      strings.ToUpper(row.Symbol),
			Price:       row.CurrentPrice,
			Change7dPct: row.Change7dInCur,
			Change30Pct: row.Change30dInCur,
		})
	}
	return quotes, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", reqURL).Msg("coingecko request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// coinIDs resolves ticker symbols to sorted CoinGecko ids, dropping
// unknown symbols.
func coinIDs(symbols []string) []string {
	ids := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if id, ok := symbolToID[strings.ToUpper(sym)]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
