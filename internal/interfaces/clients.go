package interfaces

import (
	"context"

	"github.com/wyli/fundwatch/internal/models"
)

// FundDataClient retrieves normalized market data from the upstream vendor
// proxy. Histories come back as ascending {date, price} pairs with duplicate
// dates already resolved.
type FundDataClient interface {
	// GetFundHistory returns up to days of published NAV history, ascending.
	GetFundHistory(ctx context.Context, fundCode string, days int) ([]models.PricePoint, error)

	// GetFundEstimate returns the live intraday valuation of a fund.
	GetFundEstimate(ctx context.Context, fundCode string) (*models.FundEstimate, error)

	// GetIndexHistory returns daily bars for a benchmark index, ascending.
	GetIndexHistory(ctx context.Context, indexCode string, days int) ([]models.IndexBar, error)

	// GetIndexQuote returns a benchmark index's live quote.
	GetIndexQuote(ctx context.Context, indexCode string) (*models.IndexQuote, error)

	// GetMarketStats returns market-wide advance/decline counts.
	GetMarketStats(ctx context.Context) (*models.MarketStats, error)
}

// AIClient generates a natural-language review from a prompt.
type AIClient interface {
	GenerateReview(ctx context.Context, prompt string) (string, error)
}
