package fund

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/wyli/fundwatch/internal/interfaces"
	"github.com/wyli/fundwatch/internal/models"
)

// --- storage mocks ---

type mockOperationStore struct {
	mu  sync.Mutex
	ops map[string]models.Operation
}

func newMockOperationStore() *mockOperationStore {
	return &mockOperationStore{ops: make(map[string]models.Operation)}
}

func (m *mockOperationStore) Add(_ context.Context, op *models.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op.ID == "" {
		op.ID = "op-" + op.FundCode + "-" + op.Date
	}
	m.ops[op.ID] = *op
	return nil
}

func (m *mockOperationStore) Update(_ context.Context, op *models.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ops[op.ID]; !ok {
		return errors.New("not found")
	}
	m.ops[op.ID] = *op
	return nil
}

func (m *mockOperationStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ops, id)
	return nil
}

func (m *mockOperationStore) Get(_ context.Context, id string) (*models.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op, ok := m.ops[id]; ok {
		return &op, nil
	}
	return nil, nil
}

func (m *mockOperationStore) ListAll(_ context.Context) ([]models.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Operation
	for _, op := range m.ops {
		out = append(out, op)
	}
	return out, nil
}

func (m *mockOperationStore) ListByFund(ctx context.Context, fundCode string) ([]models.Operation, error) {
	all, _ := m.ListAll(ctx)
	var out []models.Operation
	for _, op := range all {
		if op.FundCode == fundCode {
			out = append(out, op)
		}
	}
	return out, nil
}

func (m *mockOperationStore) ListPending(ctx context.Context) ([]models.Operation, error) {
	all, _ := m.ListAll(ctx)
	var out []models.Operation
	for _, op := range all {
		if op.Pending() {
			out = append(out, op)
		}
	}
	return out, nil
}

func (m *mockOperationStore) Export(ctx context.Context) (*models.LedgerExport, error) {
	all, _ := m.ListAll(ctx)
	return &models.LedgerExport{Version: 1, Operations: all}, nil
}

func (m *mockOperationStore) Import(_ context.Context, data *models.LedgerExport, merge bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !merge {
		m.ops = make(map[string]models.Operation)
	}
	for _, op := range data.Operations {
		m.ops[op.ID] = op
	}
	return len(data.Operations), nil
}

type mockHoldingStore struct {
	mu       sync.Mutex
	holdings map[string]models.Holding
}

func newMockHoldingStore() *mockHoldingStore {
	return &mockHoldingStore{holdings: make(map[string]models.Holding)}
}

func (m *mockHoldingStore) Save(_ context.Context, h *models.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.Shares <= 0 {
		delete(m.holdings, h.FundCode)
		return nil
	}
	m.holdings[h.FundCode] = *h
	return nil
}

func (m *mockHoldingStore) Get(_ context.Context, fundCode string) (*models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.holdings[fundCode]; ok {
		return &h, nil
	}
	return nil, nil
}

func (m *mockHoldingStore) Delete(_ context.Context, fundCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holdings, fundCode)
	return nil
}

func (m *mockHoldingStore) List(_ context.Context) ([]models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Holding
	for _, h := range m.holdings {
		out = append(out, h)
	}
	return out, nil
}

type mockFundStore struct {
	mu    sync.Mutex
	funds map[string]models.Fund
}

func newMockFundStore() *mockFundStore {
	return &mockFundStore{funds: make(map[string]models.Fund)}
}

func (m *mockFundStore) Save(_ context.Context, f *models.Fund) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funds[f.Code] = *f
	return nil
}

func (m *mockFundStore) Get(_ context.Context, code string) (*models.Fund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.funds[code]; ok {
		return &f, nil
	}
	return nil, nil
}

func (m *mockFundStore) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.funds, code)
	return nil
}

func (m *mockFundStore) List(_ context.Context) ([]models.Fund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Fund
	for _, f := range m.funds {
		out = append(out, f)
	}
	return out, nil
}

type mockStorageManager struct {
	operations *mockOperationStore
	holdings   *mockHoldingStore
	funds      *mockFundStore
}

func newMockStorageManager() *mockStorageManager {
	return &mockStorageManager{
		operations: newMockOperationStore(),
		holdings:   newMockHoldingStore(),
		funds:      newMockFundStore(),
	}
}

func (m *mockStorageManager) OperationStore() interfaces.OperationStore { return m.operations }
func (m *mockStorageManager) HoldingStore() interfaces.HoldingStore     { return m.holdings }
func (m *mockStorageManager) FundStore() interfaces.FundStore           { return m.funds }
func (m *mockStorageManager) Close() error                              { return nil }

// --- client mock ---

type mockFundDataClient struct {
	historyFn  func(ctx context.Context, fundCode string, days int) ([]models.PricePoint, error)
	estimateFn func(ctx context.Context, fundCode string) (*models.FundEstimate, error)

	historyCalls atomic.Int64
}

func (m *mockFundDataClient) GetFundHistory(ctx context.Context, fundCode string, days int) ([]models.PricePoint, error) {
	m.historyCalls.Add(1)
	if m.historyFn != nil {
		return m.historyFn(ctx, fundCode, days)
	}
	return nil, nil
}

func (m *mockFundDataClient) GetFundEstimate(ctx context.Context, fundCode string) (*models.FundEstimate, error) {
	if m.estimateFn != nil {
		return m.estimateFn(ctx, fundCode)
	}
	return nil, errors.New("no estimate")
}

func (m *mockFundDataClient) GetIndexHistory(_ context.Context, _ string, _ int) ([]models.IndexBar, error) {
	return nil, errors.New("not implemented")
}

func (m *mockFundDataClient) GetIndexQuote(_ context.Context, _ string) (*models.IndexQuote, error) {
	return nil, errors.New("not implemented")
}

func (m *mockFundDataClient) GetMarketStats(_ context.Context) (*models.MarketStats, error) {
	return nil, errors.New("not implemented")
}
