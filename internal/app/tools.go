package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Tally MCP server version and status. Use this to verify connectivity."),
	)
}

// createGetPortfolioTool returns the get_portfolio tool definition
func createGetPortfolioTool() mcp.Tool {
	return mcp.NewTool("get_portfolio",
		mcp.WithDescription("Get the aggregated portfolio: total value and a breakdown by category (retirement, taxable equities, crypto, cash) with per-asset detail and data freshness."),
		mcp.WithBoolean("live_prices",
			mcp.Description("Fetch live crypto prices for manual holdings (default: true)"),
		),
	)
}

// createGetAdviceTool returns the get_advice tool definition
func createGetAdviceTool() mcp.Tool {
	return mcp.NewTool("get_advice",
		mcp.WithDescription("Generate prioritized financial recommendations from goal progress, allocation drift, market opportunities and the monthly surplus plan."),
		mcp.WithString("focus",
			mcp.Description("Narrow to one area: goals, rebalance, surplus, opportunities (default: all)"),
		),
	)
}

// createGetGoalProgressTool returns the get_goal_progress tool definition
func createGetGoalProgressTool() mcp.Tool {
	return mcp.NewTool("get_goal_progress",
		mcp.WithDescription("Analyze progress toward short, medium and long term goals: status, required monthly pace, and months remaining."),
	)
}

// createGetAllocationTool returns the get_allocation tool definition
func createGetAllocationTool() mcp.Tool {
	return mcp.NewTool("get_allocation",
		mcp.WithDescription("Compare the current allocation against recommended targets and report drift per category."),
	)
}

// createGetMarketContextTool returns the get_market_context tool definition
func createGetMarketContextTool() mcp.Tool {
	return mcp.NewTool("get_market_context",
		mcp.WithDescription("Get crypto and equity market context: recent price changes, overall sentiment, and any buy-the-dip opportunities."),
	)
}

// createGetProfileTool returns the get_profile tool definition
func createGetProfileTool() mcp.Tool {
	return mcp.NewTool("get_profile",
		mcp.WithDescription("Get the user profile: monthly cash flow, tax situation, and goals."),
	)
}

// createSetHoldingTool returns the set_holding tool definition
func createSetHoldingTool() mcp.Tool {
	return mcp.NewTool("set_holding",
		mcp.WithDescription("Add or update a manual holding. Crypto holdings are keyed by symbol, bank accounts and other assets by name. A zero quantity or balance removes the entry."),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Holding kind: crypto, bank, other"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Crypto symbol (e.g. 'BTC') or account/asset name"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Quantity for crypto, balance in dollars for bank and other"),
		),
		mcp.WithString("detail",
			mcp.Description("Optional wallet (crypto) or account type (bank/other, e.g. 'hsa', 'hysa')"),
		),
	)
}
