package interfaces

import (
	"context"

	"github.com/wyli/fundwatch/internal/models"
)

// FundService orchestrates per-fund data retrieval and analytics.
type FundService interface {
	// GetFundReport assembles the merged analytics + indicator report for
	// one fund: ledger, holding, NAV history, live estimate.
	GetFundReport(ctx context.Context, fundCode string, days int) (*models.FundReport, error)

	// CollectHistories fetches NAV histories for multiple funds with bounded
	// concurrency. One fund's failure never blocks the others; failed funds
	// map to empty histories.
	CollectHistories(ctx context.Context, fundCodes []string, days int) (map[string][]models.PricePoint, error)

	// ConfirmPending sweeps all pending operations, confirming those whose
	// NAV has published. Returns the operations confirmed this pass.
	ConfirmPending(ctx context.Context) ([]models.Operation, error)
}

// MarketService derives market-wide context.
type MarketService interface {
	// GetEnvironment assembles sentiment and benchmark volume analysis for
	// the given index (empty string selects the configured default).
	GetEnvironment(ctx context.Context, benchmarkCode string) (*models.MarketEnvironment, error)
}

// ReportService assembles and renders the full portfolio report.
type ReportService interface {
	// BuildReport merges per-fund reports, totals, and market context.
	BuildReport(ctx context.Context, fundCodes []string, days int) (*models.PortfolioReport, error)

	// RenderMarkdown renders a report for export or pasting into a chat AI.
	RenderMarkdown(report *models.PortfolioReport) string

	// GenerateReview runs the report through the AI client and attaches the
	// produced review. No-op when no AI client is configured.
	GenerateReview(ctx context.Context, report *models.PortfolioReport) error
}
