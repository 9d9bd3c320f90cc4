// Package report assembles and renders the full portfolio report
package report

import (
	"context"
	"time"

	"github.com/wyli/fundwatch/internal/analysis"
	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/interfaces"
	"github.com/wyli/fundwatch/internal/models"
)

// Service implements ReportService
type Service struct {
	funds   interfaces.FundService
	market  interfaces.MarketService
	ai      interfaces.AIClient // nil when no API key configured
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new report service
func NewService(
	funds interfaces.FundService,
	market interfaces.MarketService,
	ai interfaces.AIClient,
	storage interfaces.StorageManager,
	logger *common.Logger,
) *Service {
	return &Service{
		funds:   funds,
		market:  market,
		ai:      ai,
		storage: storage,
		logger:  logger,
	}
}

// BuildReport merges per-fund reports, portfolio totals, and market context.
// An empty fund list selects every fund found in the fund list, the holding
// store, or the ledger.
func (s *Service) BuildReport(ctx context.Context, fundCodes []string, days int) (*models.PortfolioReport, error) {
	if len(fundCodes) == 0 {
		var err error
		fundCodes, err = s.trackedFundCodes(ctx)
		if err != nil {
			return nil, err
		}
	}

	report := &models.PortfolioReport{GeneratedAt: time.Now()}

	for _, code := range fundCodes {
		fundReport, err := s.funds.GetFundReport(ctx, code, days)
		if err != nil {
			s.logger.Warn().Err(err).Str("fund", code).Msg("Skipping fund in report")
			continue
		}
		report.Funds = append(report.Funds, *fundReport)
	}

	report.Summary = analysis.Summarize(report.Funds)

	if env, err := s.market.GetEnvironment(ctx, ""); err == nil {
		report.Market = env
	} else {
		s.logger.Warn().Err(err).Msg("Report built without market context")
	}

	s.logger.Info().
		Int("funds", len(report.Funds)).
		Float64("total_value", report.Summary.CurrentValue).
		Msg("Portfolio report built")

	return report, nil
}

// trackedFundCodes unions the fund list, holdings, and ledger fund codes.
func (s *Service) trackedFundCodes(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var codes []string
	add := func(code string) {
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	funds, err := s.storage.FundStore().List(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range funds {
		add(f.Code)
	}

	holdings, err := s.storage.HoldingStore().List(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range holdings {
		add(h.FundCode)
	}

	ops, err := s.storage.OperationStore().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		add(op.FundCode)
	}

	return codes, nil
}

// GenerateReview runs the report through the AI client and attaches the
// produced review. No-op when no AI client is configured.
func (s *Service) GenerateReview(ctx context.Context, report *models.PortfolioReport) error {
	if s.ai == nil {
		s.logger.Debug().Msg("No AI client configured, skipping review")
		return nil
	}

	prompt := BuildPrompt(report)
	review, err := s.ai.GenerateReview(ctx, prompt)
	if err != nil {
		return err
	}

	report.Review = review
	s.logger.Info().Int("chars", len(review)).Msg("AI review generated")
	return nil
}

// Compile-time check
var _ interfaces.ReportService = (*Service)(nil)
