package fund

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

func testHistory() []models.PricePoint {
	return []models.PricePoint{
		{Date: "2026-08-17", Price: 10.0},
		{Date: "2026-08-18", Price: 10.5},
		{Date: "2026-08-19", Price: 11.0},
		{Date: "2026-08-20", Price: 12.0},
	}
}

func TestGetFundReport_MergesAllSources(t *testing.T) {
	storage := newMockStorageManager()
	ctx := context.Background()

	require.NoError(t, storage.FundStore().Save(ctx, &models.Fund{Code: "005827", Name: "Blue Chip"}))
	require.NoError(t, storage.OperationStore().Add(ctx, &models.Operation{
		FundCode: "005827", Date: "2026-08-17", Type: models.OperationBuy, Amount: 1000, Shares: 100,
	}))

	client := &mockFundDataClient{
		historyFn: func(_ context.Context, _ string, _ int) ([]models.PricePoint, error) {
			return testHistory(), nil
		},
		estimateFn: func(_ context.Context, _ string) (*models.FundEstimate, error) {
			return &models.FundEstimate{Code: "005827", NAV: 12.0, Estimate: 12.1}, nil
		},
	}

	svc := NewService(storage, client, common.NewSilentLogger())
	report, err := svc.GetFundReport(ctx, "005827", 0)
	require.NoError(t, err)

	assert.Equal(t, "Blue Chip", report.Name)
	require.NotNil(t, report.Analysis)
	assert.Equal(t, 100.0, report.Analysis.TotalShares)
	assert.Equal(t, 1200.0, report.Analysis.CurrentValue)
	require.NotNil(t, report.Indicators)
	assert.Len(t, report.Operations, 1)

	// 100 shares x (12.1 - 12.0) estimated move.
	assert.InDelta(t, 10.0, report.DayProfit, 0.001)
}

func TestGetFundReport_EstimateFailureDegrades(t *testing.T) {
	storage := newMockStorageManager()
	client := &mockFundDataClient{
		historyFn: func(_ context.Context, _ string, _ int) ([]models.PricePoint, error) {
			return testHistory(), nil
		},
		estimateFn: func(_ context.Context, _ string) (*models.FundEstimate, error) {
			return nil, errors.New("upstream down")
		},
	}

	svc := NewService(storage, client, common.NewSilentLogger())
	report, err := svc.GetFundReport(context.Background(), "005827", 0)
	require.NoError(t, err, "estimate failure should not fail the report")

	assert.Nil(t, report.Estimate)
	require.NotNil(t, report.Indicators, "indicators fall back to last NAV")
	assert.Zero(t, report.DayProfit)
}

func TestGetFundReport_NoHistoryNoAnalysis(t *testing.T) {
	storage := newMockStorageManager()
	client := &mockFundDataClient{
		historyFn: func(_ context.Context, _ string, _ int) ([]models.PricePoint, error) {
			return nil, errors.New("unavailable")
		},
	}

	svc := NewService(storage, client, common.NewSilentLogger())
	report, err := svc.GetFundReport(context.Background(), "005827", 0)
	require.NoError(t, err)

	assert.Nil(t, report.Analysis)
	assert.Nil(t, report.Indicators)
}

func TestCollectHistories_PartialFailure(t *testing.T) {
	storage := newMockStorageManager()
	client := &mockFundDataClient{
		historyFn: func(_ context.Context, code string, _ int) ([]models.PricePoint, error) {
			if code == "bad" {
				return nil, errors.New("fetch failed")
			}
			return testHistory(), nil
		},
	}

	svc := NewService(storage, client, common.NewSilentLogger())
	results, err := svc.CollectHistories(context.Background(), []string{"005827", "bad", "161725"}, 30)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Len(t, results["005827"], 4)
	assert.Len(t, results["161725"], 4)
	assert.Empty(t, results["bad"], "failed fund maps to empty history")
}

func TestCollectHistories_Cancellation(t *testing.T) {
	storage := newMockStorageManager()
	client := &mockFundDataClient{
		historyFn: func(ctx context.Context, _ string, _ int) ([]models.PricePoint, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(50 * time.Millisecond):
				return testHistory(), nil
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(storage, client, common.NewSilentLogger())
	_, err := svc.CollectHistories(ctx, []string{"a", "b", "c", "d", "e", "f"}, 30)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfirmPending_ConfirmsEligible(t *testing.T) {
	storage := newMockStorageManager()
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1).Format(models.DateLayout)
	today := time.Now().Format(models.DateLayout)

	eligible := &models.Operation{FundCode: "005827", Date: yesterday, Type: models.OperationBuy, Amount: 200}
	tooNew := &models.Operation{FundCode: "005827", Date: today, Type: models.OperationBuy, Amount: 300}
	require.NoError(t, storage.OperationStore().Add(ctx, eligible))
	require.NoError(t, storage.OperationStore().Add(ctx, tooNew))

	client := &mockFundDataClient{
		historyFn: func(_ context.Context, _ string, _ int) ([]models.PricePoint, error) {
			return []models.PricePoint{{Date: yesterday, Price: 2.0}}, nil
		},
	}

	svc := NewService(storage, client, common.NewSilentLogger())
	confirmed, err := svc.ConfirmPending(ctx)
	require.NoError(t, err)

	require.Len(t, confirmed, 1)
	assert.Equal(t, eligible.ID, confirmed[0].ID)
	assert.Equal(t, 100.0, confirmed[0].Shares) // 200 / 2.0
	assert.Equal(t, 2.0, confirmed[0].Price)
	assert.Equal(t, yesterday, confirmed[0].PriceDate)

	// Confirmed operation is persisted.
	stored, err := storage.OperationStore().Get(ctx, eligible.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.Shares)

	// Today's operation stays pending and unmodified.
	stored, err = storage.OperationStore().Get(ctx, tooNew.ID)
	require.NoError(t, err)
	assert.True(t, stored.Pending())
	assert.Zero(t, stored.Shares)
}

func TestConfirmPending_NAVNotYetPublished(t *testing.T) {
	storage := newMockStorageManager()
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1).Format(models.DateLayout)
	op := &models.Operation{FundCode: "005827", Date: yesterday, Type: models.OperationBuy, Amount: 200}
	require.NoError(t, storage.OperationStore().Add(ctx, op))

	// History ends well before the operation date.
	client := &mockFundDataClient{
		historyFn: func(_ context.Context, _ string, _ int) ([]models.PricePoint, error) {
			return nil, nil
		},
	}

	svc := NewService(storage, client, common.NewSilentLogger())
	confirmed, err := svc.ConfirmPending(ctx)
	require.NoError(t, err, "unpublished NAV is not an error")
	assert.Empty(t, confirmed)

	stored, err := storage.OperationStore().Get(ctx, op.ID)
	require.NoError(t, err)
	assert.True(t, stored.Pending())
}

func TestConfirmPending_EmptyLedger(t *testing.T) {
	storage := newMockStorageManager()
	client := &mockFundDataClient{}

	svc := NewService(storage, client, common.NewSilentLogger())
	confirmed, err := svc.ConfirmPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, confirmed)
	assert.Zero(t, client.historyCalls.Load(), "no lookups for an empty ledger")
}
