package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/models"
)

type fundStorage struct {
	store  *Store
	logger *common.Logger
}

// NewFundStorage creates a new FundStore backed by BadgerHold.
func NewFundStorage(store *Store, logger *common.Logger) *fundStorage {
	return &fundStorage{store: store, logger: logger}
}

func (s *fundStorage) Save(_ context.Context, fund *models.Fund) error {
	if fund.Code == "" {
		return fmt.Errorf("fund requires a code")
	}

	now := time.Now()
	if fund.AddedAt.IsZero() {
		fund.AddedAt = now
	}
	fund.UpdatedAt = now

	if err := s.store.db.Upsert(fundKey(fund.Code), fund); err != nil {
		return fmt.Errorf("failed to save fund '%s': %w", fund.Code, err)
	}
	s.logger.Debug().Str("fund", fund.Code).Str("name", fund.Name).Msg("Fund saved")
	return nil
}

func (s *fundStorage) Get(_ context.Context, code string) (*models.Fund, error) {
	var fund models.Fund
	if err := s.store.db.Get(fundKey(code), &fund); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fund '%s': %w", code, err)
	}
	return &fund, nil
}

func (s *fundStorage) Delete(_ context.Context, code string) error {
	err := s.store.db.Delete(fundKey(code), models.Fund{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete fund '%s': %w", code, err)
	}
	return nil
}

func (s *fundStorage) List(_ context.Context) ([]models.Fund, error) {
	var funds []models.Fund
	if err := s.store.db.Find(&funds, nil); err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	sort.Slice(funds, func(i, j int) bool { return funds[i].Code < funds[j].Code })
	return funds, nil
}

func fundKey(code string) string {
	return "fund:" + code
}
