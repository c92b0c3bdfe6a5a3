package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/storage"
)

type stubAggregator struct {
	result *models.PortfolioResult
	err    error
	opts   interfaces.AggregateOptions
}

func (s *stubAggregator) Aggregate(ctx context.Context, opts interfaces.AggregateOptions) (*models.PortfolioResult, error) {
	s.opts = opts
	return s.result, s.err
}

func newToolRequest(args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()
	mgr, err := storage.NewManager(common.NewSilentLogger(), &common.StorageConfig{Path: t.TempDir()})
	require.NoError(t, err)
	return mgr
}

func TestHandleGetPortfolio(t *testing.T) {
	agg := &stubAggregator{result: &models.PortfolioResult{
		AsOf:       "2026-08-26",
		TotalValue: 139000,
	}}
	handler := handleGetPortfolio(agg, common.NewSilentLogger())

	result, err := handler(context.Background(), newToolRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.True(t, agg.opts.IncludeLivePrices)

	var got models.PortfolioResult
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &got))
	assert.Equal(t, 139000.0, got.TotalValue)

	_, err = handler(context.Background(), newToolRequest(map[string]interface{}{
		"live_prices": false,
	}))
	require.NoError(t, err)
	assert.False(t, agg.opts.IncludeLivePrices)
}

func TestHandleGetProfileUnset(t *testing.T) {
	handler := handleGetProfile(newTestStorage(t), common.NewSilentLogger())

	result, err := handler(context.Background(), newToolRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "No profile set")
}

func TestHandleSetHolding(t *testing.T) {
	sm := newTestStorage(t)
	handler := handleSetHolding(sm, common.NewSilentLogger())

	t.Run("adds a crypto holding", func(t *testing.T) {
		result, err := handler(context.Background(), newToolRequest(map[string]interface{}{
			"kind":   "crypto",
			"name":   "btc",
			"amount": 0.5,
			"detail": "cold storage",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		holdings, err := sm.Holdings().GetHoldings()
		require.NoError(t, err)
		require.Len(t, holdings.Crypto, 1)
		assert.Equal(t, "BTC", holdings.Crypto[0].Symbol)
		assert.Equal(t, 0.5, holdings.Crypto[0].Quantity)
		assert.Equal(t, "cold storage", holdings.Crypto[0].Wallet)
		assert.NotEmpty(t, holdings.UpdatedAt)
	})

	t.Run("updates an existing entry in place", func(t *testing.T) {
		_, err := handler(context.Background(), newToolRequest(map[string]interface{}{
			"kind":   "crypto",
			"name":   "BTC",
			"amount": 0.75,
		}))
		require.NoError(t, err)

		holdings, err := sm.Holdings().GetHoldings()
		require.NoError(t, err)
		require.Len(t, holdings.Crypto, 1)
		assert.Equal(t, 0.75, holdings.Crypto[0].Quantity)
	})

	t.Run("zero amount removes the entry", func(t *testing.T) {
		_, err := handler(context.Background(), newToolRequest(map[string]interface{}{
			"kind":   "crypto",
			"name":   "BTC",
			"amount": 0,
		}))
		require.NoError(t, err)

		holdings, err := sm.Holdings().GetHoldings()
		require.NoError(t, err)
		assert.Empty(t, holdings.Crypto)
	})

	t.Run("bank accounts are keyed by name", func(t *testing.T) {
		_, err := handler(context.Background(), newToolRequest(map[string]interface{}{
			"kind":   "bank",
			"name":   "Ally HYSA",
			"amount": 15000.0,
			"detail": "savings",
		}))
		require.NoError(t, err)

		holdings, err := sm.Holdings().GetHoldings()
		require.NoError(t, err)
		require.Len(t, holdings.BankAccounts, 1)
		assert.Equal(t, "Ally HYSA", holdings.BankAccounts[0].Name)
		assert.Equal(t, "savings", holdings.BankAccounts[0].Kind)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		result, err := handler(context.Background(), newToolRequest(map[string]interface{}{
			"kind":   "equity",
			"name":   "VOO",
			"amount": 10.0,
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("rejects missing amount", func(t *testing.T) {
		result, err := handler(context.Background(), newToolRequest(map[string]interface{}{
			"kind": "crypto",
			"name": "ETH",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}
