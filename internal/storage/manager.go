// Package storage provides the top-level StorageManager coordinating the
// fund, holding, and operation stores over one embedded database.
package storage

import (
	"fmt"

	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/interfaces"
	"github.com/wyli/fundwatch/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single BadgerHold store.
type Manager struct {
	store      *badger.Store
	operations interfaces.OperationStore
	holdings   interfaces.HoldingStore
	funds      interfaces.FundStore
	logger     *common.Logger
}

// NewManager opens the embedded database and wires up the typed stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		store:      store,
		operations: badger.NewOperationStorage(store, logger),
		holdings:   badger.NewHoldingStorage(store, logger),
		funds:      badger.NewFundStorage(store, logger),
		logger:     logger,
	}, nil
}

func (m *Manager) OperationStore() interfaces.OperationStore {
	return m.operations
}

func (m *Manager) HoldingStore() interfaces.HoldingStore {
	return m.holdings
}

func (m *Manager) FundStore() interfaces.FundStore {
	return m.funds
}

func (m *Manager) Close() error {
	return m.store.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
