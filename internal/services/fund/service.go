// Package fund provides the per-fund analytics service
package fund

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/wyli/fundwatch/internal/analysis"
	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/indicators"
	"github.com/wyli/fundwatch/internal/interfaces"
	"github.com/wyli/fundwatch/internal/models"
)

const (
	// DefaultHistoryDays covers the longest indicator lookback (MA60 plus
	// slope history) with room for market holidays.
	DefaultHistoryDays = 120

	// collectConcurrency bounds parallel history fetches. The upstream proxy
	// rate limit does the fine-grained throttling.
	collectConcurrency = 4
)

// Service implements FundService
type Service struct {
	storage  interfaces.StorageManager
	client   interfaces.FundDataClient
	computer *indicators.Computer
	logger   *common.Logger
}

// NewService creates a new fund service
func NewService(
	storage interfaces.StorageManager,
	client interfaces.FundDataClient,
	logger *common.Logger,
) *Service {
	return &Service{
		storage:  storage,
		client:   client,
		computer: indicators.NewComputer(),
		logger:   logger,
	}
}

// GetFundReport assembles the merged analytics and indicator report for one
// fund. Live estimate failures degrade to NAV-only pricing rather than
// failing the report.
func (s *Service) GetFundReport(ctx context.Context, fundCode string, days int) (*models.FundReport, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}

	report := &models.FundReport{Code: fundCode}

	if fund, err := s.storage.FundStore().Get(ctx, fundCode); err == nil && fund != nil {
		report.Name = fund.Name
	}

	ops, err := s.storage.OperationStore().ListByFund(ctx, fundCode)
	if err != nil {
		return nil, err
	}
	report.Operations = ops

	holding, err := s.storage.HoldingStore().Get(ctx, fundCode)
	if err != nil {
		return nil, err
	}
	report.Holding = holding

	history, err := s.client.GetFundHistory(ctx, fundCode, days)
	if err != nil {
		s.logger.Warn().Err(err).Str("fund", fundCode).Msg("Failed to fetch NAV history")
		history = nil
	}
	report.History = history

	estimate, err := s.client.GetFundEstimate(ctx, fundCode)
	if err != nil {
		s.logger.Warn().Err(err).Str("fund", fundCode).Msg("Failed to fetch live estimate")
		estimate = nil
	}
	report.Estimate = estimate
	if report.Name == "" && estimate != nil {
		report.Name = estimate.Name
	}

	report.Analysis = analysis.Calculate(ops, history, holding)

	currentPrice := 0.0
	if estimate != nil {
		currentPrice = estimate.CurrentPrice()
	}
	if currentPrice <= 0 && len(history) > 0 {
		currentPrice = history[len(history)-1].Price
	}
	if currentPrice > 0 {
		report.Indicators = s.computer.Compute(history, currentPrice)
	}

	report.DayProfit = dayProfit(report.Analysis, estimate)

	s.logger.Debug().
		Str("fund", fundCode).
		Int("operations", len(ops)).
		Int("history", len(history)).
		Bool("analysis", report.Analysis != nil).
		Msg("Fund report assembled")

	return report, nil
}

// dayProfit is today's estimated P&L: position size times the estimated
// per-unit move since the last published NAV.
func dayProfit(a *models.FundAnalysis, estimate *models.FundEstimate) float64 {
	if a == nil || a.TotalShares <= 0 || estimate == nil {
		return 0
	}
	if estimate.Estimate <= 0 || estimate.NAV <= 0 {
		return 0
	}
	return math.Round(a.TotalShares*(estimate.Estimate-estimate.NAV)*100) / 100
}

// CollectHistories fetches NAV histories for multiple funds with bounded
// concurrency. A failed fund maps to an empty history; cancellation stops
// the remaining fetches.
func (s *Service) CollectHistories(ctx context.Context, fundCodes []string, days int) (map[string][]models.PricePoint, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}

	results := make(map[string][]models.PricePoint, len(fundCodes))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, collectConcurrency)

	for _, code := range fundCodes {
		select {
		case <-ctx.Done():
			wg.Wait()
			return results, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			defer func() { <-sem }()

			history, err := s.client.GetFundHistory(ctx, code, days)
			if err != nil {
				s.logger.Warn().Err(err).Str("fund", code).Msg("History fetch failed")
				history = nil
			}
			mu.Lock()
			results[code] = history
			mu.Unlock()
		}(code)
	}

	wg.Wait()
	return results, ctx.Err()
}

// ConfirmPending sweeps the ledger for pending operations whose NAV has
// published, fills in their share counts, and persists them. Operations whose
// NAV is still unavailable stay pending for the next sweep.
func (s *Service) ConfirmPending(ctx context.Context) ([]models.Operation, error) {
	pending, err := s.storage.OperationStore().ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	now := time.Now()
	lookup := analysis.PriceLookupFunc(s.lookupNAV)

	var confirmed []models.Operation
	for _, op := range pending {
		result, err := analysis.Confirm(ctx, op, lookup, now)
		if err != nil {
			if errors.Is(err, analysis.ErrNotEligible) || errors.Is(err, analysis.ErrPriceUnavailable) {
				s.logger.Debug().Str("id", op.ID).Str("fund", op.FundCode).Err(err).Msg("Operation left pending")
				continue
			}
			return confirmed, err
		}

		if err := s.storage.OperationStore().Update(ctx, &result); err != nil {
			return confirmed, err
		}
		confirmed = append(confirmed, result)

		s.logger.Info().
			Str("id", result.ID).
			Str("fund", result.FundCode).
			Float64("shares", result.Shares).
			Float64("price", result.Price).
			Str("price_date", result.PriceDate).
			Msg("Operation confirmed")
	}

	return confirmed, nil
}

// lookupNAV finds the published NAV for a fund at or nearest before a date.
func (s *Service) lookupNAV(ctx context.Context, fundCode, date string) (models.PricePoint, error) {
	history, err := s.client.GetFundHistory(ctx, fundCode, DefaultHistoryDays)
	if err != nil {
		return models.PricePoint{}, err
	}
	point, ok := analysis.NearestBefore(history, date)
	if !ok {
		return models.PricePoint{}, errors.New("no NAV published at or before " + date)
	}
	return point, nil
}

// Compile-time check
var _ interfaces.FundService = (*Service)(nil)
