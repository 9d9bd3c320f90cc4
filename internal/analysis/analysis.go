// Package analysis derives position statistics from operation ledgers and
// NAV histories. Like the indicator engine it is pure and stateless: all I/O
// happens in calling code.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/wyli/fundwatch/internal/models"
)

// HoldingBasis states where a position's share count and cost came from.
type HoldingBasis string

const (
	// BasisExplicit means an authoritative current holding was supplied and
	// used directly. It wins over ledger replay because the ledger may be
	// incomplete (imported positions with no operation history).
	BasisExplicit HoldingBasis = "explicit"

	// BasisLedger means the position was reconstructed by replaying the
	// operation ledger with the average-cost method.
	BasisLedger HoldingBasis = "ledger"
)

// Position is a reconstructed or supplied current position.
type Position struct {
	Basis     HoldingBasis
	Shares    float64
	Invested  float64
	CostPrice float64
}

// ResolvePosition determines the current position, preferring an explicit
// holding with positive shares over ledger replay.
func ResolvePosition(ops []models.Operation, holding *models.Holding) Position {
	if holding.Valid() {
		return Position{
			Basis:     BasisExplicit,
			Shares:    holding.Shares,
			Invested:  holding.Shares * holding.CostPrice,
			CostPrice: holding.CostPrice,
		}
	}
	return replayLedger(ops)
}

// replayLedger reconstructs a position from operations in date order using
// the average-cost method: sells reduce the invested amount by the same
// fraction as the shares sold, not by the sold lot's original cost.
// Operations with a missing type or date are skipped: one bad record must
// not poison the rest of the ledger.
func replayLedger(ops []models.Operation) Position {
	var invested, shares float64

	for _, op := range ops {
		if !op.Type.Valid() || op.Date == "" {
			continue
		}
		switch {
		case op.Type.IsEntry():
			invested += op.Amount
			shares += op.Shares
		case op.Type.IsExit():
			if shares > 0 {
				ratio := math.Min(op.Shares/shares, 1)
				invested -= invested * ratio
			}
			shares -= op.Shares
		}
	}

	shares = math.Max(0, shares)
	invested = math.Max(0, invested)

	pos := Position{Basis: BasisLedger, Shares: shares, Invested: invested}
	if shares > 0 {
		pos.CostPrice = invested / shares
	}
	return pos
}

// Calculate derives the full fund analysis from an operation ledger, a NAV
// history, and an optional authoritative holding. Inputs are sorted
// defensively; caller order is not assumed. Returns nil when history is
// empty, since no price data means no analysis is possible.
func Calculate(ops []models.Operation, history []models.PricePoint, holding *models.Holding) *models.FundAnalysis {
	if len(history) == 0 {
		return nil
	}

	sortedOps := make([]models.Operation, len(ops))
	copy(sortedOps, ops)
	sort.Slice(sortedOps, func(i, j int) bool { return sortedOps[i].Date < sortedOps[j].Date })

	sortedHistory := make([]models.PricePoint, len(history))
	copy(sortedHistory, history)
	sort.Slice(sortedHistory, func(i, j int) bool { return sortedHistory[i].Date < sortedHistory[j].Date })

	pos := ResolvePosition(sortedOps, holding)

	currentPrice := sortedHistory[len(sortedHistory)-1].Price
	currentValue := pos.Shares * currentPrice

	// The peak/trough window starts at the first entry operation, or at the
	// earliest history point when the ledger has no entries.
	startDate := sortedHistory[0].Date
	for _, op := range sortedOps {
		if op.Type.IsEntry() && op.Date != "" {
			startDate = op.Date
			break
		}
	}

	var maxPrice, minPrice float64
	var maxDate, minDate string
	minPrice = math.Inf(1)
	for _, h := range sortedHistory {
		if h.Date < startDate {
			continue
		}
		if h.Price > maxPrice {
			maxPrice = h.Price
			maxDate = h.Date
		}
		if h.Price < minPrice {
			minPrice = h.Price
			minDate = h.Date
		}
	}
	if math.IsInf(minPrice, 1) {
		minPrice = 0
	}

	maxValue := pos.Shares * maxPrice
	drawdown := 0.0
	if maxValue > 0 {
		drawdown = (currentValue - maxValue) / maxValue * 100
	}

	missedProfit := math.Max(0, maxValue-currentValue)

	profit := currentValue - pos.Invested
	profitRate := 0.0
	if pos.Invested > 0 {
		profitRate = profit / pos.Invested * 100
	}

	return &models.FundAnalysis{
		TotalInvested: round2(pos.Invested),
		CurrentValue:  round2(currentValue),
		TotalShares:   round2(pos.Shares),
		CostPrice:     round4(pos.CostPrice),
		CurrentPrice:  currentPrice,
		Profit:        round2(profit),
		ProfitRate:    round2(profitRate),
		DaysHeld:      daysHeld(sortedOps, time.Now()),
		MaxPrice:      maxPrice,
		MaxDate:       maxDate,
		MinPrice:      minPrice,
		MinDate:       minDate,
		Drawdown:      round2(drawdown),
		MissedProfit:  round2(missedProfit),
	}
}

// daysHeld counts calendar days since the earliest entry operation.
// Zero when the ledger has no dated entries.
func daysHeld(sortedOps []models.Operation, now time.Time) int {
	for _, op := range sortedOps {
		if !op.Type.IsEntry() {
			continue
		}
		d, err := time.Parse(models.DateLayout, op.Date)
		if err != nil {
			continue
		}
		days := int(now.Sub(d).Hours() / 24)
		if days < 0 {
			return 0
		}
		return days
	}
	return 0
}

// Summarize aggregates totals over funds with strictly positive share counts.
// Funds with cleared or invalid positions are excluded so they cannot pollute
// portfolio-level figures.
func Summarize(reports []models.FundReport) models.PortfolioSummary {
	var summary models.PortfolioSummary

	for _, r := range reports {
		if r.Analysis == nil || r.Analysis.TotalShares <= 0 {
			continue
		}
		summary.TotalFunds++
		summary.TotalInvested += r.Analysis.TotalInvested
		summary.CurrentValue += r.Analysis.CurrentValue

		switch classifyPosture(r.Indicators) {
		case postureBullish:
			summary.BullishCount++
		case postureBearish:
			summary.BearishCount++
		default:
			summary.NeutralCount++
		}
	}

	summary.TotalProfit = round2(summary.CurrentValue - summary.TotalInvested)
	if summary.TotalInvested > 0 {
		summary.ProfitRate = round2(summary.TotalProfit / summary.TotalInvested * 100)
	}
	summary.TotalInvested = round2(summary.TotalInvested)
	summary.CurrentValue = round2(summary.CurrentValue)

	return summary
}

type posture int

const (
	postureNeutral posture = iota
	postureBullish
	postureBearish
)

// classifyPosture grades a fund's technical stance: bullish when RSI > 60
// with price above both short moving averages, bearish when RSI < 40 with
// price below both.
func classifyPosture(snap *models.IndicatorSnapshot) posture {
	if snap == nil || snap.RSI == nil {
		return postureNeutral
	}
	ma5Above := snap.MA5Analysis != nil && snap.MA5Analysis.Position == models.MAPositionAbove
	ma10Above := snap.MA10Analysis != nil && snap.MA10Analysis.Position == models.MAPositionAbove

	if *snap.RSI > 60 && ma5Above && ma10Above {
		return postureBullish
	}
	if *snap.RSI < 40 && !ma5Above && !ma10Above {
		return postureBearish
	}
	return postureNeutral
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
