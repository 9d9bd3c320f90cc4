package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/models"
)

type holdingStorage struct {
	store  *Store
	logger *common.Logger
}

// NewHoldingStorage creates a new HoldingStore backed by BadgerHold.
func NewHoldingStorage(store *Store, logger *common.Logger) *holdingStorage {
	return &holdingStorage{store: store, logger: logger}
}

func (s *holdingStorage) Save(ctx context.Context, holding *models.Holding) error {
	if holding.FundCode == "" {
		return fmt.Errorf("holding requires a fund code")
	}

	// A cleared position is stored as absence, not as a zero row.
	if holding.Shares <= 0 {
		return s.Delete(ctx, holding.FundCode)
	}

	holding.UpdatedAt = time.Now()
	if err := s.store.db.Upsert(holdingKey(holding.FundCode), holding); err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}
	s.logger.Debug().Str("fund", holding.FundCode).Float64("shares", holding.Shares).Msg("Holding saved")
	return nil
}

func (s *holdingStorage) Get(_ context.Context, fundCode string) (*models.Holding, error) {
	var holding models.Holding
	if err := s.store.db.Get(holdingKey(fundCode), &holding); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil // no position is not an error
		}
		return nil, fmt.Errorf("failed to get holding for fund '%s': %w", fundCode, err)
	}
	return &holding, nil
}

func (s *holdingStorage) Delete(_ context.Context, fundCode string) error {
	err := s.store.db.Delete(holdingKey(fundCode), models.Holding{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete holding for fund '%s': %w", fundCode, err)
	}
	return nil
}

func (s *holdingStorage) List(_ context.Context) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.store.db.Find(&holdings, nil); err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

func holdingKey(fundCode string) string {
	return "holding:" + fundCode
}
