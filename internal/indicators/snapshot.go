package indicators

import (
	"math"
	"sort"
	"time"

	"github.com/wyli/fundwatch/internal/models"
)

// Computer computes full indicator snapshots for a fund.
type Computer struct{}

// NewComputer creates a new indicator computer.
func NewComputer() *Computer {
	return &Computer{}
}

// Compute calculates every indicator over the fund's NAV history with the
// live price appended as the newest point, so every moving average, band,
// and oscillator already reflects the live valuation, not just closes.
// Returns nil when no history is available.
func (c *Computer) Compute(history []models.PricePoint, currentPrice float64) *models.IndicatorSnapshot {
	if len(history) == 0 {
		return nil
	}

	sorted := make([]models.PricePoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	prices := make([]float64, 0, len(sorted)+1)
	for _, p := range sorted {
		prices = append(prices, p.Price)
	}
	prices = append(prices, currentPrice)

	snapshot := &models.IndicatorSnapshot{
		ComputeTime:  time.Now(),
		CurrentPrice: round4(currentPrice),
		DataPoints:   len(prices),
		Cross:        models.CrossNone,
	}

	snapshot.MA = models.MovingAverages{
		MA5:  roundedSMA(prices, 5),
		MA10: roundedSMA(prices, 10),
		MA20: roundedSMA(prices, 20),
		MA60: roundedSMA(prices, 60),
	}

	// Short MA histories drive slope analysis and cross detection. Both are
	// rebuilt over the same prefix range so their values stay index-aligned.
	ma5History, ma10History := maHistories(prices)

	snapshot.MA5Analysis = roundAnalysis(AnalyzeMA(currentPrice, ma5History))
	snapshot.MA10Analysis = roundAnalysis(AnalyzeMA(currentPrice, ma10History))
	if ma60, ok := SMA(prices, 60); ok {
		position := models.MAPositionBelow
		if currentPrice > ma60 {
			position = models.MAPositionAbove
		}
		snapshot.MA60Analysis = &models.MAAnalysis{Position: position, Value: round4(ma60)}
	}

	snapshot.Cross = DetectCross(ma5History, ma10History, crossLookbackDays)

	if rsi, ok := RSI(prices, 14); ok {
		snapshot.RSI = ptr(round2(rsi))
	}

	macd := MACD(prices)
	snapshot.MACD = models.MACDResult{
		DIF:   round4p(macd.DIF),
		DEA:   round4p(macd.DEA),
		Hist:  round4p(macd.Hist),
		Trend: macd.Trend,
	}

	boll := BOLL(prices, 20, 2)
	snapshot.Boll = models.BollingerBands{
		Upper:    round4p(boll.Upper),
		Mid:      round4p(boll.Mid),
		Lower:    round4p(boll.Lower),
		Position: boll.Position,
	}

	if ma20, ok := SMA(prices, 20); ok {
		if bias, ok := BIAS(currentPrice, ma20); ok {
			snapshot.Bias.Bias20 = ptr(round2(bias))
		}
	}
	if ma60, ok := SMA(prices, 60); ok {
		if bias, ok := BIAS(currentPrice, ma60); ok {
			snapshot.Bias.Bias60 = ptr(round2(bias))
		}
	}

	window := prices
	if len(window) > percentileWindow {
		window = prices[len(prices)-percentileWindow:]
	}
	if rank, ok := PercentRank(currentPrice, window); ok {
		snapshot.Percentile = ptr(round2(rank))
	}

	return snapshot
}

const (
	// crossLookbackDays bounds how far back the golden/dead cross scan goes.
	crossLookbackDays = 5

	// percentileWindow is the recent-window size for the percent rank.
	percentileWindow = 20

	// maHistoryDepth is how many trailing MA values are rebuilt for slope
	// and cross analysis.
	maHistoryDepth = 5
)

// maHistories rebuilds the last few MA5 and MA10 values by recomputing each
// average over successively longer prefixes of the series. The shared start
// index (never below the slower period) keeps the two histories aligned.
func maHistories(prices []float64) (ma5, ma10 []float64) {
	start := len(prices) - maHistoryDepth
	if start < 10 {
		start = 10
	}
	for i := start; i <= len(prices); i++ {
		if v, ok := SMA(prices[:i], 5); ok {
			ma5 = append(ma5, v)
		}
		if v, ok := SMA(prices[:i], 10); ok {
			ma10 = append(ma10, v)
		}
	}
	return ma5, ma10
}

func roundedSMA(prices []float64, period int) *float64 {
	if ma, ok := SMA(prices, period); ok {
		return ptr(round4(ma))
	}
	return nil
}

func roundAnalysis(a *models.MAAnalysis) *models.MAAnalysis {
	if a == nil {
		return nil
	}
	a.Value = round4(a.Value)
	return a
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round4p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(round4(*v))
}

func ptr(v float64) *float64 {
	return &v
}
