package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/common"
)

func newTestClient(serverURL string, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithBaseURL(serverURL),
		WithRateLimit(6000), // effectively unlimited in tests
		WithRetry(common.RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond}),
	}
	return NewClient(append(base, opts...)...)
}

func TestGetPrices(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"bitcoin":{"usd":65000.5},"ethereum":{"usd":3200.25}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	prices, err := client.GetPrices(context.Background(), []string{"BTC", "ETH"})
	require.NoError(t, err)
	assert.Equal(t, 65000.5, prices["BTC"])
	assert.Equal(t, 3200.25, prices["ETH"])

	// Second call within the cache TTL must not hit the server.
	_, err = client.GetPrices(context.Background(), []string{"BTC", "ETH"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetPricesThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	// Throttling is not an error for price lookups: callers proceed
	// without live prices.
	prices, err := client.GetPrices(context.Background(), []string{"BTC"})
	require.NoError(t, err)
	assert.Nil(t, prices)
}

func TestGetPricesUnknownSymbols(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	prices, err := client.GetPrices(context.Background(), []string{"NOTACOIN"})
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestGetMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "7d,30d", r.URL.Query().Get("price_change_percentage"))
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","current_price":65000,
			 "price_change_percentage_7d_in_currency":-11.4,"price_change_percentage_30d_in_currency":-4.0},
			{"id":"ethereum","symbol":"eth","current_price":3200,
			 "price_change_percentage_7d_in_currency":-8.2,"price_change_percentage_30d_in_currency":null}
		]`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	quotes, err := client.GetMarkets(context.Background(), []string{"BTC", "ETH"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "BTC", quotes[0].Symbol)
	require.NotNil(t, quotes[0].Change7dPct)
	assert.Equal(t, -11.4, *quotes[0].Change7dPct)
	assert.Equal(t, "ETH", quotes[1].Symbol)
	assert.Nil(t, quotes[1].Change30Pct)
}

func TestGetMarketsRetriesOnThrottle(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","current_price":65000,
			"price_change_percentage_7d_in_currency":2.0,"price_change_percentage_30d_in_currency":5.0}]`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	quotes, err := client.GetMarkets(context.Background(), []string{"BTC"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetMarketsThrottleExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.GetMarkets(context.Background(), []string{"BTC"})
	require.Error(t, err)
	assert.True(t, IsThrottled(err))
}
