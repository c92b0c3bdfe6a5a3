package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/services/advisor"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Tally MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGetPortfolio implements the get_portfolio tool
func handleGetPortfolio(aggregator interfaces.AggregatorService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		livePrices := request.GetBool("live_prices", true)

		portfolio, err := aggregator.Aggregate(ctx, interfaces.AggregateOptions{
			IncludeLivePrices: livePrices,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Portfolio aggregation failed")
			return errorResult(fmt.Sprintf("Portfolio error: %v", err)), nil
		}

		return jsonResult(portfolio)
	}
}

// handleGetAdvice implements the get_advice tool
func handleGetAdvice(advisorService interfaces.AdvisorService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		focus := request.GetString("focus", "")

		bundle, err := advisorService.GenerateAdvice(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Advice generation failed")
			return errorResult(fmt.Sprintf("Advice error: %v", err)), nil
		}

		if focus != "" {
			bundle = advisor.FilterByFocus(bundle, focus)
		}

		return jsonResult(bundle)
	}
}

// handleGetGoalProgress implements the get_goal_progress tool
func handleGetGoalProgress(analyzer interfaces.AnalyzerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		goals, err := analyzer.AnalyzeGoals(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Goal analysis failed")
			return errorResult(fmt.Sprintf("Goal analysis error: %v", err)), nil
		}

		return jsonResult(goals)
	}
}

// handleGetAllocation implements the get_allocation tool
func handleGetAllocation(analyzer interfaces.AnalyzerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		allocation, err := analyzer.AnalyzeAllocation(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Allocation analysis failed")
			return errorResult(fmt.Sprintf("Allocation analysis error: %v", err)), nil
		}

		return jsonResult(allocation)
	}
}

// handleGetMarketContext implements the get_market_context tool
func handleGetMarketContext(analyzer interfaces.AnalyzerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		market, err := analyzer.MarketContext(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Market context failed")
			return errorResult(fmt.Sprintf("Market context error: %v", err)), nil
		}

		return jsonResult(market)
	}
}

// handleGetProfile implements the get_profile tool
func handleGetProfile(sm interfaces.StorageManager, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profile, err := sm.Profile().GetProfile()
		if err != nil {
			logger.Error().Err(err).Msg("Profile load failed")
			return errorResult(fmt.Sprintf("Profile error: %v", err)), nil
		}
		if profile == nil {
			return textResult("No profile set. Save one via PUT /api/profile."), nil
		}

		return jsonResult(profile)
	}
}

// handleSetHolding implements the set_holding tool
func handleSetHolding(sm interfaces.StorageManager, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := request.RequireString("kind")
		if err != nil || kind == "" {
			return errorResult("Error: kind parameter is required (crypto, bank, other)"), nil
		}
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		amount := request.GetFloat("amount", -1)
		if amount < 0 {
			return errorResult("Error: amount parameter is required and must not be negative"), nil
		}
		detail := request.GetString("detail", "")

		holdings, err := sm.Holdings().GetHoldings()
		if err != nil {
			logger.Error().Err(err).Msg("Holdings load failed")
			return errorResult(fmt.Sprintf("Holdings error: %v", err)), nil
		}

		switch strings.ToLower(kind) {
		case "crypto":
			holdings.Crypto = upsertCrypto(holdings.Crypto, strings.ToUpper(name), amount, detail)
		case "bank":
			holdings.BankAccounts = upsertBank(holdings.BankAccounts, name, amount, detail)
		case "other":
			holdings.Other = upsertOther(holdings.Other, name, amount, detail)
		default:
			return errorResult(fmt.Sprintf("Error: unknown kind %q (expected crypto, bank, other)", kind)), nil
		}

		holdings.UpdatedAt = time.Now().Format("2006-01-02")
		if err := sm.Holdings().SaveHoldings(holdings); err != nil {
			logger.Error().Err(err).Msg("Holdings save failed")
			return errorResult(fmt.Sprintf("Holdings error: %v", err)), nil
		}

		return jsonResult(holdings)
	}
}

func upsertCrypto(list []models.CryptoHolding, symbol string, quantity float64, wallet string) []models.CryptoHolding {
	out := list[:0]
	for _, h := range list {
		if !strings.EqualFold(h.Symbol, symbol) {
			out = append(out, h)
		}
	}
	if quantity > 0 {
		out = append(out, models.CryptoHolding{Symbol: symbol, Quantity: quantity, Wallet: wallet})
	}
	return out
}

func upsertBank(list []models.BankAccount, name string, balance float64, kind string) []models.BankAccount {
	out := list[:0]
	for _, a := range list {
		if !strings.EqualFold(a.Name, name) {
			out = append(out, a)
		}
	}
	if balance > 0 {
		out = append(out, models.BankAccount{Name: name, Balance: balance, Kind: kind})
	}
	return out
}

func upsertOther(list []models.OtherAsset, name string, balance float64, kind string) []models.OtherAsset {
	out := list[:0]
	for _, a := range list {
		if !strings.EqualFold(a.Name, name) {
			out = append(out, a)
		}
	}
	if balance > 0 {
		out = append(out, models.OtherAsset{Name: name, Balance: balance, Kind: kind})
	}
	return out
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Encoding error: %v", err)), nil
	}
	return textResult(string(data)), nil
}
