// Package market derives market-wide context from index and breadth data
package market

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/interfaces"
	"github.com/wyli/fundwatch/internal/models"
)

// Benchmark index codes.
const (
	IndexCSI300  = "sh000300"
	IndexSSE     = "sh000001"
	IndexChiNext = "sz399006"
	IndexCSI500  = "sh000905"
	IndexSTAR50  = "sh000688"

	DefaultIndex = IndexCSI300

	volumeHistDays = 10
)

// Service implements MarketService
type Service struct {
	client    interfaces.FundDataClient
	benchmark string
	logger    *common.Logger
	now       func() time.Time
}

// NewService creates a new market service. The benchmark is the index used
// when callers do not name one.
func NewService(client interfaces.FundDataClient, benchmark string, logger *common.Logger) *Service {
	if benchmark == "" {
		benchmark = DefaultIndex
	}
	return &Service{
		client:    client,
		benchmark: benchmark,
		logger:    logger,
		now:       time.Now,
	}
}

// GetEnvironment assembles breadth sentiment and benchmark volume analysis.
// Missing upstream data degrades the affected section to unknown instead of
// failing the whole environment.
func (s *Service) GetEnvironment(ctx context.Context, benchmarkCode string) (*models.MarketEnvironment, error) {
	if benchmarkCode == "" {
		benchmarkCode = s.benchmark
	}

	stats, err := s.client.GetMarketStats(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to fetch market stats")
		stats = nil
	}

	quote, err := s.client.GetIndexQuote(ctx, benchmarkCode)
	if err != nil {
		s.logger.Warn().Err(err).Str("index", benchmarkCode).Msg("Failed to fetch index quote")
		quote = nil
	}

	history, err := s.client.GetIndexHistory(ctx, benchmarkCode, volumeHistDays)
	if err != nil {
		s.logger.Warn().Err(err).Str("index", benchmarkCode).Msg("Failed to fetch index history")
		history = nil
	}

	env := &models.MarketEnvironment{
		Timestamp:     s.now(),
		Sentiment:     CalculateSentiment(stats),
		BenchmarkCode: benchmarkCode,
		Volume:        volumeAnalysis(quote, history, s.now()),
	}
	if quote != nil {
		env.BenchmarkName = quote.Name
		env.Price = quote.Price
		env.ChangePct = quote.ChangePct
	}

	return env, nil
}

// CalculateSentiment grades market mood from advance/decline breadth. The
// score is the percentage of all issues that advanced.
func CalculateSentiment(stats *models.MarketStats) models.Sentiment {
	if stats == nil || stats.Total == 0 {
		return models.Sentiment{Level: models.SentimentUnknown, Description: "breadth data unavailable"}
	}

	ratio := float64(stats.Up) / float64(stats.Total)

	var level models.SentimentLevel
	var description string
	switch {
	case ratio >= 0.7:
		level = models.SentimentVeryBullish
		description = "broad rally, advancers dominate"
	case ratio >= 0.55:
		level = models.SentimentBullish
		description = "advancers outnumber decliners"
	case ratio >= 0.45:
		level = models.SentimentNeutral
		description = "mixed market, breadth balanced"
	case ratio >= 0.3:
		level = models.SentimentBearish
		description = "decliners outnumber advancers"
	default:
		level = models.SentimentVeryBearish
		description = "broad selloff, decliners dominate"
	}

	return models.Sentiment{
		Level:       level,
		Score:       math.Round(ratio*10000) / 100,
		UpCount:     stats.Up,
		DownCount:   stats.Down,
		TotalCount:  stats.Total,
		Description: description,
	}
}

// sessionMinutes is the length of the A-share trading day:
// 09:30-11:30 and 13:00-15:00.
const sessionMinutes = 240

// volumeAnalysis compares today's index volume against the 5-day average.
// Intraday, today's partial volume is extrapolated to a full session by the
// fraction of trading minutes elapsed.
func volumeAnalysis(quote *models.IndexQuote, history []models.IndexBar, now time.Time) models.VolumeAnalysis {
	if quote == nil || len(history) < 5 {
		return models.VolumeAnalysis{Level: "unknown"}
	}

	recent := history[len(history)-5:]
	var sum float64
	for _, bar := range recent {
		sum += bar.Volume
	}
	avg := sum / float64(len(recent))
	if avg == 0 {
		return models.VolumeAnalysis{Level: "unknown"}
	}

	currentVolume := quote.Volume
	if minutes := tradingMinutes(now); minutes > 0 && minutes < sessionMinutes {
		currentVolume = quote.Volume / float64(minutes) * sessionMinutes
	}

	ratio := math.Round(currentVolume/avg*100) / 100

	var level string
	switch {
	case ratio >= 1.5:
		level = "high"
	case ratio >= 1.0:
		level = "normal"
	case ratio >= 0.7:
		level = "low"
	default:
		level = "very_low"
	}

	return models.VolumeAnalysis{Ratio: &ratio, Level: level}
}

// tradingMinutes returns how many trading minutes have elapsed at the given
// local time: 0 before the open, a full session after the close.
func tradingMinutes(now time.Time) int {
	hour, minute := now.Hour(), now.Minute()
	switch {
	case hour < 9 || (hour == 9 && minute < 30):
		return 0
	case hour == 9:
		return minute - 30
	case hour == 10:
		return 30 + minute
	case hour == 11:
		if minute > 30 {
			return 120
		}
		return 90 + minute
	case hour == 12:
		return 120
	case hour == 13:
		return 120 + minute
	case hour == 14:
		return 180 + minute
	default:
		return sessionMinutes
	}
}

// InferBenchmark picks the benchmark index matching a fund's investment
// style, keyed off its name. Defaults to CSI 300.
func InferBenchmark(fundName string) string {
	name := strings.ToUpper(fundName)
	switch {
	case strings.Contains(name, "创业板") || strings.Contains(name, "成长"):
		return IndexChiNext
	case strings.Contains(name, "科创") || strings.Contains(name, "科技"):
		return IndexSTAR50
	case strings.Contains(name, "中证500") || strings.Contains(name, "中小盘"):
		return IndexCSI500
	case strings.Contains(name, "上证") || strings.Contains(name, "大盘"):
		return IndexSSE
	default:
		return IndexCSI300
	}
}

// Compile-time check
var _ interfaces.MarketService = (*Service)(nil)
