// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/fundwatch-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wyli/fundwatch/internal/clients/fundapi"
	"github.com/wyli/fundwatch/internal/clients/gemini"
	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/interfaces"
	"github.com/wyli/fundwatch/internal/services/fund"
	"github.com/wyli/fundwatch/internal/services/market"
	"github.com/wyli/fundwatch/internal/services/report"
	"github.com/wyli/fundwatch/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Storage       interfaces.StorageManager
	FundClient    interfaces.FundDataClient
	AIClient      interfaces.AIClient
	FundService   interfaces.FundService
	MarketService interfaces.MarketService
	ReportService interfaces.ReportService
	StartupTime   time.Time

	confirmCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, FUNDWATCH_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("FUNDWATCH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "fundwatch.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fundwatch.toml"
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

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	fundClient := fundapi.NewClient(
		fundapi.WithBaseURL(config.Clients.FundAPI.BaseURL),
		fundapi.WithRateLimit(config.Clients.FundAPI.RateLimit),
		fundapi.WithTimeout(config.Clients.FundAPI.GetTimeout()),
		fundapi.WithLogger(logger),
	)

	var aiClient interfaces.AIClient
	if key := config.Clients.Gemini.APIKey; key != "" {
		client, err := gemini.NewClient(context.Background(), key,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - AI review will be unavailable")
		} else {
			aiClient = client
		}
	} else {
		logger.Debug().Msg("Gemini API key not configured - AI review will be unavailable")
	}

	fundService := fund.NewService(storageManager, fundClient, logger)
	marketService := market.NewService(fundClient, config.Clients.FundAPI.Benchmark, logger)
	reportService := report.NewService(fundService, marketService, aiClient, storageManager, logger)

	a := &App{
		Config:        config,
		Logger:        logger,
		Storage:       storageManager,
		FundClient:    fundClient,
		AIClient:      aiClient,
		FundService:   fundService,
		MarketService: marketService,
		ReportService: reportService,
		StartupTime:   startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// StartConfirmSweeper launches the background loop that confirms pending
// operations as their NAVs publish.
func (a *App) StartConfirmSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.confirmCancel = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			sweepCtx, sweepCancel := context.WithTimeout(ctx, 5*time.Minute)
			confirmed, err := a.FundService.ConfirmPending(sweepCtx)
			sweepCancel()
			if err != nil {
				a.Logger.Warn().Err(err).Msg("Pending confirmation sweep failed")
			} else if len(confirmed) > 0 {
				a.Logger.Info().Int("confirmed", len(confirmed)).Msg("Pending operations confirmed")
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.confirmCancel != nil {
		a.confirmCancel()
		a.confirmCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
