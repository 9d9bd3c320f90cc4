// Package indicators provides technical indicator calculations over NAV series.
//
// All functions are pure and safe for concurrent use. Price slices are ordered
// oldest-first. Indicators that cannot be computed from the available history
// report ok=false (or nil fields on composite results) rather than zero.
package indicators

import (
	"math"

	"github.com/wyli/fundwatch/internal/models"
)

// SMA calculates the simple moving average of the last period points.
func SMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), true
}

// EMA calculates the exponential moving average with multiplier 2/(period+1),
// seeded with the SMA of the first period points. Because the seed uses the
// first period points of whatever slice is given, EMA over different-length
// slices of the same series can legitimately differ.
func EMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	k := 2.0 / float64(period+1)
	ema, _ := SMA(prices[:period], period)
	for i := period; i < len(prices); i++ {
		ema = prices[i]*k + ema*(1-k)
	}
	return ema, true
}

// RSI calculates the relative strength index over the period most recent
// one-step deltas. Requires period+1 points. An all-gains window yields
// exactly 100, never a division blowup.
func RSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period+1 {
		return 0, false
	}

	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}

// macdMinPoints is the minimum series length for a MACD computation.
const macdMinPoints = 35

// MACD calculates the MACD triple: DIF = EMA12 - EMA26, DEA = 9-period EMA of
// the historical DIF series, Hist = (DIF-DEA)*2. The DIF history is rebuilt by
// recomputing both EMAs at every prefix length from 26 upward; quadratic but
// deterministic, and cheap at 90-point fund histories.
func MACD(prices []float64) models.MACDResult {
	if len(prices) < macdMinPoints {
		return models.MACDResult{}
	}

	ema12, ok12 := EMA(prices, 12)
	ema26, ok26 := EMA(prices, 26)
	if !ok12 || !ok26 {
		return models.MACDResult{}
	}
	dif := ema12 - ema26

	var difHistory []float64
	for i := 26; i <= len(prices); i++ {
		e12, ok1 := EMA(prices[:i], 12)
		e26, ok2 := EMA(prices[:i], 26)
		if ok1 && ok2 {
			difHistory = append(difHistory, e12-e26)
		}
	}

	result := models.MACDResult{DIF: &dif}

	dea, okDEA := EMA(difHistory, 9)
	if !okDEA {
		return result
	}
	hist := (dif - dea) * 2
	result.DEA = &dea
	result.Hist = &hist

	// Trend compares today's histogram with yesterday's, which needs the DEA
	// recomputed over the shorter prefix.
	if len(difHistory) >= 10 {
		prevDEA, ok := EMA(difHistory[:len(difHistory)-1], 9)
		if ok {
			prevHist := (difHistory[len(difHistory)-2] - prevDEA) * 2
			switch {
			case hist > prevHist:
				result.Trend = models.MACDImproving
			case hist < prevHist:
				result.Trend = models.MACDDeteriorating
			default:
				result.Trend = models.MACDFlat
			}
		}
	}

	return result
}

// BOLL calculates Bollinger Bands over the last period points with the given
// standard-deviation multiplier, and classifies the last price against the
// bands. The standard deviation is population (divide by period).
func BOLL(prices []float64, period int, multiplier float64) models.BollingerBands {
	if period <= 0 || len(prices) < period {
		return models.BollingerBands{}
	}

	window := prices[len(prices)-period:]
	mid, _ := SMA(prices, period)

	variance := 0.0
	for _, p := range window {
		variance += (p - mid) * (p - mid)
	}
	variance /= float64(period)
	stdDev := math.Sqrt(variance)

	upper := mid + multiplier*stdDev
	lower := mid - multiplier*stdDev

	current := prices[len(prices)-1]
	position := models.BollMid
	switch {
	case current >= upper:
		position = models.BollUpper
	case current <= lower:
		position = models.BollLower
	case current > mid:
		position = models.BollUpperMid
	case current < mid:
		position = models.BollLowerMid
	}

	return models.BollingerBands{Upper: &upper, Mid: &mid, Lower: &lower, Position: position}
}

// BIAS calculates the percentage deviation of price from a moving average.
func BIAS(price, ma float64) (float64, bool) {
	if ma == 0 {
		return 0, false
	}
	return (price - ma) / ma * 100, true
}

// AnalyzeMA classifies price position against a moving average and the
// average's own slope over its last 3 values. The slope threshold is relative
// (0.1% of the MA value) so near-flat lines do not flip on noise.
func AnalyzeMA(currentPrice float64, maHistory []float64) *models.MAAnalysis {
	if len(maHistory) < 3 {
		return nil
	}

	currentMA := maHistory[len(maHistory)-1]
	position := models.MAPositionBelow
	if currentPrice > currentMA {
		position = models.MAPositionAbove
	}

	recent := maHistory[len(maHistory)-3:]
	avgChange := (recent[2] - recent[0]) / 2

	slope := models.MASlopeFlat
	threshold := currentMA * 0.001
	if avgChange > threshold {
		slope = models.MASlopeUp
	} else if avgChange < -threshold {
		slope = models.MASlopeDown
	}

	return &models.MAAnalysis{Position: position, Slope: slope, Value: currentMA}
}

// DetectCross walks backward up to days steps through two aligned moving
// average histories (most-recent-last) and reports the first sign flip of
// (fast - slow): golden for below-to-above, dead for above-to-below. A step
// where the averages currently touch is not a flip and does not stop the
// scan; a touch on the earlier step still counts as a flip once the lines
// separate, so a fast line that meets the slow one and breaks through is a
// cross.
func DetectCross(fast, slow []float64, days int) models.CrossSignal {
	if len(fast) < days || len(slow) < days {
		return models.CrossNone
	}

	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	if days < n {
		n = days
	}

	for i := 1; i < n; i++ {
		prevDiff := fast[len(fast)-i-1] - slow[len(slow)-i-1]
		currDiff := fast[len(fast)-i] - slow[len(slow)-i]

		if prevDiff <= 0 && currDiff > 0 {
			return models.CrossGolden
		}
		if prevDiff >= 0 && currDiff < 0 {
			return models.CrossDead
		}
	}

	return models.CrossNone
}

// PercentRank places price within the min-max range of a window as a 0-100
// percentile. A flat window ranks any price as exactly 50.
func PercentRank(price float64, window []float64) (float64, bool) {
	if len(window) == 0 {
		return 0, false
	}

	min, max := window[0], window[0]
	for _, p := range window[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	if max == min {
		return 50, true
	}
	return (price - min) / (max - min) * 100, true
}
