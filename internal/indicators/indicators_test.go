package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyli/fundwatch/internal/models"
)

func TestSMA(t *testing.T) {
	v, ok := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.True(t, ok)
	assert.Equal(t, 4.0, v)

	_, ok = SMA([]float64{1, 2}, 3)
	assert.False(t, ok, "insufficient history")

	_, ok = SMA([]float64{1, 2, 3}, 0)
	assert.False(t, ok, "non-positive period")
}

func TestEMASeededWithSMA(t *testing.T) {
	// Seed is SMA of the first 2 points (1.5), then one smoothing step:
	// 3*(2/3) + 1.5*(1/3) = 2.5
	v, ok := EMA([]float64{1, 2, 3}, 2)
	require.True(t, ok)
	assert.InDelta(t, 2.5, v, 1e-9)

	_, ok = EMA([]float64{1}, 2)
	assert.False(t, ok)
}

func TestRSI(t *testing.T) {
	// 1 gain, 0.5 loss over a 2-period window: RS=2, RSI=66.67
	v, ok := RSI([]float64{10, 11, 10.5}, 2)
	require.True(t, ok)
	assert.InDelta(t, 66.6667, v, 0.001)

	// All gains must yield exactly 100, not a division blowup.
	up := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	v, ok = RSI(up, 14)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)

	// Needs period+1 points.
	_, ok = RSI([]float64{1, 2}, 2)
	assert.False(t, ok)
}

func TestRSIBounded(t *testing.T) {
	prices := []float64{10, 9, 11, 8, 12, 7, 13, 6, 14, 5, 15, 4, 16, 3, 17}
	v, ok := RSI(prices, 14)
	require.True(t, ok)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.LessOrEqual(t, v, 100.0)
}

func TestMACDRequiresMinimumHistory(t *testing.T) {
	prices := make([]float64, 34)
	for i := range prices {
		prices[i] = float64(i + 1)
	}
	result := MACD(prices)
	assert.Nil(t, result.DIF)
	assert.Nil(t, result.DEA)
	assert.Nil(t, result.Hist)
	assert.Empty(t, result.Trend)
}

func TestMACDFullSeries(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = float64(i + 1)
	}
	result := MACD(prices)
	require.NotNil(t, result.DIF)
	require.NotNil(t, result.DEA)
	require.NotNil(t, result.Hist)
	assert.Greater(t, *result.DIF, 0.0, "rising series keeps the fast EMA above the slow")
	assert.NotEmpty(t, result.Trend)
	assert.InDelta(t, (*result.DIF-*result.DEA)*2, *result.Hist, 1e-9)
}

func TestBOLL(t *testing.T) {
	bands := BOLL([]float64{1, 3}, 2, 2)
	require.NotNil(t, bands.Mid)
	assert.Equal(t, 2.0, *bands.Mid)
	assert.Equal(t, 4.0, *bands.Upper)
	assert.Equal(t, 0.0, *bands.Lower)
	assert.Equal(t, models.BollUpperMid, bands.Position)
}

func TestBOLLBandOrdering(t *testing.T) {
	prices := []float64{1.2, 1.5, 1.1, 1.8, 1.3, 1.6, 1.4, 1.7, 1.25, 1.55}
	bands := BOLL(prices, 10, 2)
	require.NotNil(t, bands.Upper)
	assert.GreaterOrEqual(t, *bands.Upper, *bands.Mid)
	assert.GreaterOrEqual(t, *bands.Mid, *bands.Lower)
}

func TestBOLLFlatWindowClassifiesUpper(t *testing.T) {
	// Zero deviation collapses the bands onto the mid line; the last price
	// then sits at (>=) the upper band.
	bands := BOLL([]float64{2, 2}, 2, 2)
	require.NotNil(t, bands.Upper)
	assert.Equal(t, *bands.Mid, *bands.Upper)
	assert.Equal(t, models.BollUpper, bands.Position)
}

func TestBOLLInsufficientHistory(t *testing.T) {
	bands := BOLL([]float64{1}, 20, 2)
	assert.Nil(t, bands.Upper)
	assert.Nil(t, bands.Mid)
	assert.Nil(t, bands.Lower)
	assert.Empty(t, bands.Position)
}

func TestBIAS(t *testing.T) {
	v, ok := BIAS(11, 10)
	require.True(t, ok)
	assert.InDelta(t, 10.0, v, 1e-9)

	_, ok = BIAS(11, 0)
	assert.False(t, ok)
}

func TestAnalyzeMA(t *testing.T) {
	assert.Nil(t, AnalyzeMA(10, []float64{10, 10.5}), "needs 3 MA values")

	a := AnalyzeMA(12, []float64{10, 10.5, 11})
	require.NotNil(t, a)
	assert.Equal(t, models.MAPositionAbove, a.Position)
	assert.Equal(t, models.MASlopeUp, a.Slope)
	assert.Equal(t, 11.0, a.Value)

	a = AnalyzeMA(9, []float64{11, 10.5, 10})
	require.NotNil(t, a)
	assert.Equal(t, models.MAPositionBelow, a.Position)
	assert.Equal(t, models.MASlopeDown, a.Slope)
}

func TestAnalyzeMASlopeThresholdIsRelative(t *testing.T) {
	// avgChange 0.005 is under the 0.1% threshold (0.01001), so the line is
	// flat despite strictly increasing values.
	a := AnalyzeMA(10, []float64{10, 10.005, 10.01})
	require.NotNil(t, a)
	assert.Equal(t, models.MASlopeFlat, a.Slope)
}

func TestDetectCross(t *testing.T) {
	golden := DetectCross([]float64{1, 2, 4}, []float64{3, 2.5, 2}, 3)
	assert.Equal(t, models.CrossGolden, golden)

	dead := DetectCross([]float64{4, 2, 1}, []float64{2, 2.5, 3}, 3)
	assert.Equal(t, models.CrossDead, dead)

	// The lines touching mid-scan does not hide the break-through.
	golden = DetectCross([]float64{1, 2, 3}, []float64{3, 2, 1}, 3)
	assert.Equal(t, models.CrossGolden, golden)

	// Identical lines never flip.
	none := DetectCross([]float64{1, 2, 3}, []float64{1, 2, 3}, 3)
	assert.Equal(t, models.CrossNone, none)

	// Fast stays above slow throughout.
	none = DetectCross([]float64{3, 4, 5}, []float64{1, 2, 3}, 3)
	assert.Equal(t, models.CrossNone, none)

	// Not enough history for the requested lookback.
	none = DetectCross([]float64{1, 2}, []float64{2, 1}, 5)
	assert.Equal(t, models.CrossNone, none)
}

func TestPercentRank(t *testing.T) {
	v, ok := PercentRank(4, []float64{1, 2, 3, 4, 5})
	require.True(t, ok)
	assert.InDelta(t, 75.0, v, 1e-9)

	v, ok = PercentRank(2, []float64{2, 2, 2})
	require.True(t, ok)
	assert.Equal(t, 50.0, v, "flat window ranks as exactly 50")

	_, ok = PercentRank(1, nil)
	assert.False(t, ok)
}
