package models

import "time"

// FundAnalysis aggregates the position-level statistics derived from a fund's
// operation ledger and NAV history. All monetary fields are rounded to 2
// decimal places and internally consistent: Profit = CurrentValue -
// TotalInvested.
type FundAnalysis struct {
	TotalInvested float64 `json:"total_invested"`
	CurrentValue  float64 `json:"current_value"`
	TotalShares   float64 `json:"total_shares"`
	CostPrice     float64 `json:"cost_price"`
	CurrentPrice  float64 `json:"current_price"`
	Profit        float64 `json:"profit"`
	ProfitRate    float64 `json:"profit_rate"` // percent
	DaysHeld      int     `json:"days_held,omitempty"`

	// Peak/trough over the window from first entry (or earliest history).
	MaxPrice float64 `json:"max_price"`
	MaxDate  string  `json:"max_date"`
	MinPrice float64 `json:"min_price"`
	MinDate  string  `json:"min_date"`

	// Drawdown is the percentage change of current value from the peak value.
	// Negative below the peak; positive when contributions pushed current
	// value above the historical peak (not clamped).
	Drawdown float64 `json:"drawdown"`

	// MissedProfit is the opportunity cost of not selling at the peak.
	// Never negative.
	MissedProfit float64 `json:"missed_profit"`
}

// FundReport merges the analytics and technical views of one fund.
type FundReport struct {
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	Estimate   *FundEstimate      `json:"estimate,omitempty"`
	Holding    *Holding           `json:"holding,omitempty"`
	Operations []Operation        `json:"operations,omitempty"`
	History    []PricePoint       `json:"history,omitempty"`
	Analysis   *FundAnalysis      `json:"analysis,omitempty"`
	Indicators *IndicatorSnapshot `json:"indicators,omitempty"`

	// Day-over-day P&L, computed from the estimated day change.
	DayProfit float64 `json:"day_profit,omitempty"`
}

// PortfolioSummary is the aggregate view over all funds with an open
// position. Funds with zero or invalid share counts are excluded.
type PortfolioSummary struct {
	TotalFunds    int     `json:"total_funds"`
	TotalInvested float64 `json:"total_invested"`
	CurrentValue  float64 `json:"current_value"`
	TotalProfit   float64 `json:"total_profit"`
	ProfitRate    float64 `json:"profit_rate"` // percent

	// Counts of funds by technical posture.
	BullishCount int `json:"bullish_count"`
	BearishCount int `json:"bearish_count"`
	NeutralCount int `json:"neutral_count"`
}

// SentimentLevel grades overall market breadth.
type SentimentLevel string

const (
	SentimentVeryBullish SentimentLevel = "very_bullish"
	SentimentBullish     SentimentLevel = "bullish"
	SentimentNeutral     SentimentLevel = "neutral"
	SentimentBearish     SentimentLevel = "bearish"
	SentimentVeryBearish SentimentLevel = "very_bearish"
	SentimentUnknown     SentimentLevel = "unknown"
)

// MarketStats is the advance/decline breadth of the market.
type MarketStats struct {
	Total int `json:"total"`
	Up    int `json:"up"`
	Down  int `json:"down"`
	Equal int `json:"equal"`
}

// Sentiment is the breadth-derived market mood.
type Sentiment struct {
	Level       SentimentLevel `json:"level"`
	Score       float64        `json:"score"` // % of advancing issues
	UpCount     int            `json:"up_count"`
	DownCount   int            `json:"down_count"`
	TotalCount  int            `json:"total_count"`
	Description string         `json:"description"`
}

// IndexQuote is a benchmark index's live quote.
type IndexQuote struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Volume    float64 `json:"volume"`
}

// IndexBar is one day of benchmark index history.
type IndexBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`
}

// VolumeAnalysis compares current index volume to its recent average.
type VolumeAnalysis struct {
	Ratio *float64 `json:"ratio"`
	Level string   `json:"level"` // high, normal, low, very_low, unknown
}

// MarketEnvironment is the market-wide context attached to reports.
type MarketEnvironment struct {
	Timestamp     time.Time      `json:"timestamp"`
	Sentiment     Sentiment      `json:"sentiment"`
	BenchmarkCode string         `json:"benchmark_code"`
	BenchmarkName string         `json:"benchmark_name,omitempty"`
	Price         float64        `json:"price,omitempty"`
	ChangePct     float64        `json:"change_pct,omitempty"`
	Volume        VolumeAnalysis `json:"volume"`
}

// PortfolioReport is the full merged report: per-fund analytics and
// indicators, portfolio totals, and market context. This is what the AI
// review and exports consume.
type PortfolioReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Summary     PortfolioSummary   `json:"summary"`
	Funds       []FundReport       `json:"funds"`
	Market      *MarketEnvironment `json:"market,omitempty"`
	Review      string             `json:"review,omitempty"` // AI-generated, optional
}

// LedgerExport is the portable dump of the operation ledger.
type LedgerExport struct {
	Version    int         `json:"version"`
	ExportTime time.Time   `json:"export_time"`
	Operations []Operation `json:"operations"`
}
