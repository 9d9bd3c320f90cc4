package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/models"
)

// RenderMarkdown renders a portfolio report as markdown, suitable for export
// or pasting into a chat AI.
func (s *Service) RenderMarkdown(report *models.PortfolioReport) string {
	var sb strings.Builder

	sb.WriteString("# Fund Portfolio Report\n\n")
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04")))

	// Overview
	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Funds held | %d |\n", report.Summary.TotalFunds))
	sb.WriteString(fmt.Sprintf("| Total invested | %s |\n", common.FormatMoney(report.Summary.TotalInvested)))
	sb.WriteString(fmt.Sprintf("| Current value | %s |\n", common.FormatMoney(report.Summary.CurrentValue)))
	sb.WriteString(fmt.Sprintf("| Total profit | %s (%s) |\n",
		common.FormatSignedMoney(report.Summary.TotalProfit),
		common.FormatSignedPct(report.Summary.ProfitRate)))
	sb.WriteString(fmt.Sprintf("| Technical posture | %d bullish / %d bearish / %d neutral |\n\n",
		report.Summary.BullishCount, report.Summary.BearishCount, report.Summary.NeutralCount))

	// Market context
	if report.Market != nil {
		m := report.Market
		sb.WriteString("## Market\n\n")
		sb.WriteString(fmt.Sprintf("- Sentiment: %s (%.2f%% advancing) - %s\n",
			m.Sentiment.Level, m.Sentiment.Score, m.Sentiment.Description))
		if m.BenchmarkName != "" {
			sb.WriteString(fmt.Sprintf("- Benchmark: %s (%s) %.2f %s\n",
				m.BenchmarkName, m.BenchmarkCode, m.Price, common.FormatSignedPct(m.ChangePct)))
		}
		if m.Volume.Ratio != nil {
			sb.WriteString(fmt.Sprintf("- Volume: %.2fx 5-day average (%s)\n", *m.Volume.Ratio, m.Volume.Level))
		}
		sb.WriteString("\n")
	}

	// Per-fund detail
	sb.WriteString("## Holdings\n\n")
	for _, fund := range report.Funds {
		writeFundSection(&sb, &fund)
	}

	// Questions for the reader (human or AI)
	sb.WriteString("## Questions\n\n")
	sb.WriteString("1. Was the timing of my operations reasonable? What could be improved?\n")
	sb.WriteString("2. Did I miss obvious take-profit or add opportunities?\n")
	sb.WriteString("3. Is the current position structure sensible? What are the risks?\n")
	sb.WriteString("4. Based on recent trends, what would you suggest?\n")

	return sb.String()
}

func writeFundSection(sb *strings.Builder, fund *models.FundReport) {
	name := fund.Name
	if name == "" {
		name = fund.Code
	}
	sb.WriteString(fmt.Sprintf("### %s (%s)\n\n", name, fund.Code))

	if a := fund.Analysis; a != nil && a.TotalShares > 0 {
		sb.WriteString("**Position**\n")
		sb.WriteString(fmt.Sprintf("- Invested: %s\n", common.FormatMoney(a.TotalInvested)))
		sb.WriteString(fmt.Sprintf("- Current value: %s\n", common.FormatMoney(a.CurrentValue)))
		sb.WriteString(fmt.Sprintf("- Profit: %s (%s)\n",
			common.FormatSignedMoney(a.Profit), common.FormatSignedPct(a.ProfitRate)))
		sb.WriteString(fmt.Sprintf("- Shares: %.2f\n", a.TotalShares))
		sb.WriteString(fmt.Sprintf("- Current NAV: %.4f\n", a.CurrentPrice))
		if a.DaysHeld > 0 {
			sb.WriteString(fmt.Sprintf("- Days held: %d\n", a.DaysHeld))
		}
		if a.MaxDate != "" {
			sb.WriteString(fmt.Sprintf("- Period high: %.4f (%s)\n", a.MaxPrice, a.MaxDate))
			sb.WriteString(fmt.Sprintf("- Drawdown from high: %.2f%%\n", a.Drawdown))
			if a.MissedProfit > 0 {
				sb.WriteString(fmt.Sprintf("- Missed take-profit: %s\n", common.FormatMoney(a.MissedProfit)))
			}
		}
		sb.WriteString("\n")
	}

	if snap := fund.Indicators; snap != nil {
		sb.WriteString("**Technicals**\n")
		if snap.RSI != nil {
			sb.WriteString(fmt.Sprintf("- RSI(14): %.2f\n", *snap.RSI))
		}
		if snap.Cross != models.CrossNone && snap.Cross != "" {
			sb.WriteString(fmt.Sprintf("- MA cross: %s\n", snap.Cross))
		}
		if snap.MACD.Trend != "" {
			sb.WriteString(fmt.Sprintf("- MACD trend: %s\n", snap.MACD.Trend))
		}
		if snap.Boll.Position != "" {
			sb.WriteString(fmt.Sprintf("- Bollinger position: %s\n", snap.Boll.Position))
		}
		if snap.Percentile != nil {
			sb.WriteString(fmt.Sprintf("- 20-day percentile: %.1f\n", *snap.Percentile))
		}
		sb.WriteString("\n")
	}

	if len(fund.Operations) > 0 {
		sb.WriteString("**Operations**\n\n")
		sb.WriteString("| Date | Type | Amount | Shares | NAV | Note |\n")
		sb.WriteString("|------|------|--------|--------|-----|------|\n")
		for _, op := range fund.Operations {
			amount := "-"
			if op.Amount > 0 {
				amount = common.FormatMoney(op.Amount)
			}
			shares := "-"
			if op.Shares > 0 {
				shares = fmt.Sprintf("%.2f", op.Shares)
			}
			price := "-"
			if op.Price > 0 {
				price = fmt.Sprintf("%.4f", op.Price)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				op.Date, op.Type, amount, shares, price, op.Note))
		}
		sb.WriteString("\n")
	}

	if len(fund.History) > 0 {
		h := fund.History
		start, end := h[0], h[len(h)-1]
		change := 0.0
		if start.Price > 0 {
			change = (end.Price - start.Price) / start.Price * 100
		}
		sb.WriteString(fmt.Sprintf("**Recent trend** (%d days)\n", len(h)))
		sb.WriteString(fmt.Sprintf("- Start: %s NAV %.4f\n", start.Date, start.Price))
		sb.WriteString(fmt.Sprintf("- End: %s NAV %.4f\n", end.Date, end.Price))
		sb.WriteString(fmt.Sprintf("- Period change: %s\n\n", common.FormatSignedPct(change)))
	}
}

// BuildPrompt produces the structured prompt sent to the AI reviewer: an
// indicator legend followed by the compact report JSON.
func BuildPrompt(report *models.PortfolioReport) string {
	data, err := json.Marshal(report)
	if err != nil {
		data = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("Analyze the following fund portfolio data and give buy/sell/hold advice per fund.\n\n")
	sb.WriteString("## Field guide\n")
	sb.WriteString("- generated_at: when the data was assembled\n")
	sb.WriteString("- market: market environment (breadth sentiment, benchmark volume)\n")
	sb.WriteString("- summary: portfolio totals\n")
	sb.WriteString("- funds: per-fund analytics and technical indicators\n\n")
	sb.WriteString("## Indicator guide\n")
	sb.WriteString("- ma: moving average values (5/10/20/60 day)\n")
	sb.WriteString("- ma5_analysis / ma10_analysis: price position vs MA and MA slope\n")
	sb.WriteString("- cross: golden / dead / none\n")
	sb.WriteString("- rsi: RSI(14), >70 overbought, <30 oversold\n")
	sb.WriteString("- macd: MACD values and trend\n")
	sb.WriteString("- boll: Bollinger band position\n")
	sb.WriteString("- bias: deviation from MA20/MA60\n")
	sb.WriteString("- price_percentile: position in the 20-day high/low range\n\n")
	sb.WriteString("## Data\n")
	sb.WriteString("```json\n")
	sb.Write(data)
	sb.WriteString("\n```\n\n")
	sb.WriteString("For each fund give:\n")
	sb.WriteString("1. A read of the current technical setup\n")
	sb.WriteString("2. A buy/sell/hold call\n")
	sb.WriteString("3. A suggested action price, if any\n")
	sb.WriteString("4. Risk notes\n")

	return sb.String()
}
