package models

import "time"

// MAPosition classifies the current price relative to a moving average.
type MAPosition string

const (
	MAPositionAbove MAPosition = "above"
	MAPositionBelow MAPosition = "below"
)

// MASlope classifies the recent direction of a moving average.
type MASlope string

const (
	MASlopeUp   MASlope = "up"
	MASlopeDown MASlope = "down"
	MASlopeFlat MASlope = "flat"
)

// CrossSignal is the outcome of golden/dead cross detection.
type CrossSignal string

const (
	CrossGolden CrossSignal = "golden"
	CrossDead   CrossSignal = "dead"
	CrossNone   CrossSignal = "none"
)

// MACDTrend classifies the day-over-day change of the MACD histogram.
type MACDTrend string

const (
	MACDImproving     MACDTrend = "improving"
	MACDDeteriorating MACDTrend = "deteriorating"
	MACDFlat          MACDTrend = "flat"
)

// BollPosition places the current price within the Bollinger bands.
type BollPosition string

const (
	BollUpper    BollPosition = "upper"
	BollUpperMid BollPosition = "upper_mid"
	BollMid      BollPosition = "mid"
	BollLowerMid BollPosition = "lower_mid"
	BollLower    BollPosition = "lower"
)

// MovingAverages holds the fixed-period simple moving averages.
// Nil means insufficient history for that period.
type MovingAverages struct {
	MA5  *float64 `json:"ma5"`
	MA10 *float64 `json:"ma10"`
	MA20 *float64 `json:"ma20"`
	MA60 *float64 `json:"ma60"`
}

// MAAnalysis describes where price sits relative to one moving average and
// which way that average is heading.
type MAAnalysis struct {
	Position MAPosition `json:"position"`
	Slope    MASlope    `json:"slope,omitempty"`
	Value    float64    `json:"value"`
}

// MACDResult holds the MACD triple and its histogram trend.
// Fields are nil when the series is too short.
type MACDResult struct {
	DIF   *float64  `json:"dif"`
	DEA   *float64  `json:"dea"`
	Hist  *float64  `json:"hist"`
	Trend MACDTrend `json:"trend,omitempty"`
}

// BollingerBands holds the band triple and the current price's position.
type BollingerBands struct {
	Upper    *float64     `json:"upper"`
	Mid      *float64     `json:"mid"`
	Lower    *float64     `json:"lower"`
	Position BollPosition `json:"position,omitempty"`
}

// BiasRatios holds percentage deviations of price from moving averages.
type BiasRatios struct {
	Bias20 *float64 `json:"bias20"`
	Bias60 *float64 `json:"bias60"`
}

// IndicatorSnapshot bundles every technical indicator computed over a fund's
// NAV history plus its live price. Each field is independently nullable:
// nil signals insufficient history, never a defaulted zero.
type IndicatorSnapshot struct {
	ComputeTime  time.Time       `json:"compute_time"`
	CurrentPrice float64         `json:"current_price"`
	DataPoints   int             `json:"data_points"`
	MA           MovingAverages  `json:"ma"`
	MA5Analysis  *MAAnalysis     `json:"ma5_analysis"`
	MA10Analysis *MAAnalysis     `json:"ma10_analysis"`
	MA60Analysis *MAAnalysis     `json:"ma60_analysis"`
	Cross        CrossSignal     `json:"cross"`
	RSI          *float64        `json:"rsi"`
	MACD         MACDResult      `json:"macd"`
	Boll         BollingerBands  `json:"boll"`
	Bias         BiasRatios      `json:"bias"`
	Percentile   *float64        `json:"price_percentile"` // 0-100 rank within recent window
}
