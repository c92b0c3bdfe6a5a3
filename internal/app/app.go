// Package app wires configuration, storage, API clients, the service
// pipeline and the MCP server into one shared core used by the cmd
// binaries.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/tally/internal/clients/coingecko"
	"github.com/bobmcallan/tally/internal/clients/eodhd"
	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/services/advisor"
	"github.com/bobmcallan/tally/internal/services/aggregator"
	"github.com/bobmcallan/tally/internal/services/analyzer"
	"github.com/bobmcallan/tally/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Storage      interfaces.StorageManager
	CryptoClient interfaces.CryptoPriceClient
	EquityClient interfaces.EquityHistoryClient
	Aggregator   interfaces.AggregatorService
	Analyzer     interfaces.AnalyzerService
	Advisor      interfaces.AdvisorService
	MCPServer    *server.MCPServer
	StartupTime  time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, services and the
// MCP server. configPath may be empty, in which case the default
// resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, TALLY_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("TALLY_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "tally.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/tally.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize API clients
	cryptoClient := coingecko.NewClient(
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithRateLimit(config.Clients.CoinGecko.RateLimit),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
		coingecko.WithPriceCacheTTL(config.Clients.CoinGecko.GetPriceCacheTTL()),
		coingecko.WithLogger(logger),
	)

	if config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - equity market context will be unavailable")
	}
	equityClient := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		eodhd.WithLogger(logger),
	)

	// Initialize the pipeline
	aggregatorService := aggregator.NewService(storageManager, cryptoClient, config, logger)
	analyzerService := analyzer.NewService(aggregatorService, storageManager, cryptoClient, equityClient, config, logger)
	advisorService := advisor.NewService(aggregatorService, analyzerService, storageManager, config, logger)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"tally",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:       config,
		Logger:       logger,
		Storage:      storageManager,
		CryptoClient: cryptoClient,
		EquityClient: equityClient,
		Aggregator:   aggregatorService,
		Analyzer:     analyzerService,
		Advisor:      advisorService,
		MCPServer:    mcpServer,
		StartupTime:  startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetPortfolioTool(), handleGetPortfolio(a.Aggregator, logger))
	s.AddTool(createGetAdviceTool(), handleGetAdvice(a.Advisor, logger))
	s.AddTool(createGetGoalProgressTool(), handleGetGoalProgress(a.Analyzer, logger))
	s.AddTool(createGetAllocationTool(), handleGetAllocation(a.Analyzer, logger))
	s.AddTool(createGetMarketContextTool(), handleGetMarketContext(a.Analyzer, logger))
	s.AddTool(createGetProfileTool(), handleGetProfile(a.Storage, logger))
	s.AddTool(createSetHoldingTool(), handleSetHolding(a.Storage, logger))
}
