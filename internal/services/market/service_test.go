package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/models"
)

type mockClient struct {
	stats   *models.MarketStats
	quote   *models.IndexQuote
	history []models.IndexBar
	err     error
}

func (m *mockClient) GetFundHistory(_ context.Context, _ string, _ int) ([]models.PricePoint, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) GetFundEstimate(_ context.Context, _ string) (*models.FundEstimate, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) GetIndexHistory(_ context.Context, _ string, _ int) ([]models.IndexBar, error) {
	return m.history, m.err
}

func (m *mockClient) GetIndexQuote(_ context.Context, _ string) (*models.IndexQuote, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.quote, nil
}

func (m *mockClient) GetMarketStats(_ context.Context) (*models.MarketStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func TestCalculateSentiment_Levels(t *testing.T) {
	tests := []struct {
		name  string
		up    int
		down  int
		total int
		want  models.SentimentLevel
	}{
		{"very bullish at 70%", 3500, 1000, 5000, models.SentimentVeryBullish},
		{"bullish at 60%", 3000, 1800, 5000, models.SentimentBullish},
		{"neutral at 50%", 2500, 2400, 5000, models.SentimentNeutral},
		{"bearish at 35%", 1750, 3100, 5000, models.SentimentBearish},
		{"very bearish at 20%", 1000, 3900, 5000, models.SentimentVeryBearish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSentiment(&models.MarketStats{Total: tt.total, Up: tt.up, Down: tt.down})
			assert.Equal(t, tt.want, got.Level)
			assert.Equal(t, tt.up, got.UpCount)
		})
	}
}

func TestCalculateSentiment_NoData(t *testing.T) {
	got := CalculateSentiment(nil)
	assert.Equal(t, models.SentimentUnknown, got.Level)
	assert.Zero(t, got.Score)

	got = CalculateSentiment(&models.MarketStats{})
	assert.Equal(t, models.SentimentUnknown, got.Level)
}

func TestCalculateSentiment_Score(t *testing.T) {
	got := CalculateSentiment(&models.MarketStats{Total: 3, Up: 2, Down: 1})
	assert.InDelta(t, 66.67, got.Score, 0.001)
}

func bars(volumes ...float64) []models.IndexBar {
	out := make([]models.IndexBar, len(volumes))
	for i, v := range volumes {
		out[i] = models.IndexBar{Date: "2026-08-2" + string(rune('0'+i)), Volume: v}
	}
	return out
}

func TestVolumeAnalysis_AfterClose(t *testing.T) {
	afterClose := time.Date(2026, 8, 27, 16, 0, 0, 0, time.Local)
	quote := &models.IndexQuote{Volume: 150}

	got := volumeAnalysis(quote, bars(100, 100, 100, 100, 100), afterClose)
	require.NotNil(t, got.Ratio)
	assert.InDelta(t, 1.5, *got.Ratio, 0.001)
	assert.Equal(t, "high", got.Level)
}

func TestVolumeAnalysis_IntradayExtrapolates(t *testing.T) {
	// Half the session elapsed: 11:30 is 120 of 240 minutes.
	midday := time.Date(2026, 8, 27, 11, 30, 0, 0, time.Local)
	quote := &models.IndexQuote{Volume: 50}

	got := volumeAnalysis(quote, bars(100, 100, 100, 100, 100), midday)
	require.NotNil(t, got.Ratio)
	assert.InDelta(t, 1.0, *got.Ratio, 0.001, "partial volume doubled to full session")
	assert.Equal(t, "normal", got.Level)
}

func TestVolumeAnalysis_InsufficientHistory(t *testing.T) {
	got := volumeAnalysis(&models.IndexQuote{Volume: 100}, bars(100, 100), time.Now())
	assert.Nil(t, got.Ratio)
	assert.Equal(t, "unknown", got.Level)

	got = volumeAnalysis(nil, bars(100, 100, 100, 100, 100), time.Now())
	assert.Equal(t, "unknown", got.Level)

	got = volumeAnalysis(&models.IndexQuote{Volume: 100}, bars(0, 0, 0, 0, 0), time.Now())
	assert.Equal(t, "unknown", got.Level, "zero average volume")
}

func TestTradingMinutes(t *testing.T) {
	day := func(h, m int) time.Time {
		return time.Date(2026, 8, 27, h, m, 0, 0, time.Local)
	}
	assert.Equal(t, 0, tradingMinutes(day(9, 0)))
	assert.Equal(t, 15, tradingMinutes(day(9, 45)))
	assert.Equal(t, 90, tradingMinutes(day(11, 0)))
	assert.Equal(t, 120, tradingMinutes(day(12, 30)))
	assert.Equal(t, 150, tradingMinutes(day(13, 30)))
	assert.Equal(t, 240, tradingMinutes(day(15, 30)))
}

func TestGetEnvironment_DegradesOnFailure(t *testing.T) {
	svc := NewService(&mockClient{err: errors.New("proxy down")}, "", common.NewSilentLogger())

	env, err := svc.GetEnvironment(context.Background(), "")
	require.NoError(t, err, "upstream failure degrades, not fails")
	assert.Equal(t, models.SentimentUnknown, env.Sentiment.Level)
	assert.Equal(t, "unknown", env.Volume.Level)
	assert.Equal(t, DefaultIndex, env.BenchmarkCode)
}

func TestGetEnvironment_FullData(t *testing.T) {
	client := &mockClient{
		stats:   &models.MarketStats{Total: 5000, Up: 3000, Down: 1800, Equal: 200},
		quote:   &models.IndexQuote{Code: "sh000300", Name: "沪深300", Price: 3500.12, ChangePct: 0.45, Volume: 120},
		history: bars(100, 100, 100, 100, 100),
	}
	svc := NewService(client, "", common.NewSilentLogger())
	svc.now = func() time.Time { return time.Date(2026, 8, 27, 15, 30, 0, 0, time.Local) }

	env, err := svc.GetEnvironment(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentBullish, env.Sentiment.Level)
	assert.Equal(t, "沪深300", env.BenchmarkName)
	assert.Equal(t, 3500.12, env.Price)
	require.NotNil(t, env.Volume.Ratio)
	assert.InDelta(t, 1.2, *env.Volume.Ratio, 0.001)
}

func TestInferBenchmark(t *testing.T) {
	assert.Equal(t, IndexChiNext, InferBenchmark("华夏创业板ETF联接"))
	assert.Equal(t, IndexSTAR50, InferBenchmark("易方达科技创新"))
	assert.Equal(t, IndexCSI500, InferBenchmark("南方中证500ETF"))
	assert.Equal(t, IndexSSE, InferBenchmark("汇添富上证综合指数"))
	assert.Equal(t, IndexCSI300, InferBenchmark("易方达蓝筹精选"))
	assert.Equal(t, IndexCSI300, InferBenchmark(""))
}
