package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/models"
)

type operationStorage struct {
	store  *Store
	logger *common.Logger
}

// NewOperationStorage creates a new OperationStore backed by BadgerHold.
func NewOperationStorage(store *Store, logger *common.Logger) *operationStorage {
	return &operationStorage{store: store, logger: logger}
}

func (s *operationStorage) Add(_ context.Context, op *models.Operation) error {
	if op.FundCode == "" || op.Date == "" {
		return fmt.Errorf("operation requires fund code and date")
	}
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}

	if err := s.store.db.Insert(op.ID, op); err != nil {
		return fmt.Errorf("failed to add operation: %w", err)
	}
	s.logger.Debug().Str("id", op.ID).Str("fund", op.FundCode).Str("type", string(op.Type)).Msg("Operation added")
	return nil
}

func (s *operationStorage) Update(_ context.Context, op *models.Operation) error {
	var existing models.Operation
	if err := s.store.db.Get(op.ID, &existing); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("operation '%s' not found", op.ID)
		}
		return fmt.Errorf("failed to get operation '%s': %w", op.ID, err)
	}

	op.CreatedAt = existing.CreatedAt
	op.UpdatedAt = time.Now()

	if err := s.store.db.Update(op.ID, op); err != nil {
		return fmt.Errorf("failed to update operation: %w", err)
	}
	s.logger.Debug().Str("id", op.ID).Msg("Operation updated")
	return nil
}

func (s *operationStorage) Delete(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Operation{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete operation '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Operation deleted")
	return nil
}

func (s *operationStorage) Get(_ context.Context, id string) (*models.Operation, error) {
	var op models.Operation
	if err := s.store.db.Get(id, &op); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get operation '%s': %w", id, err)
	}
	return &op, nil
}

func (s *operationStorage) ListAll(_ context.Context) ([]models.Operation, error) {
	var ops []models.Operation
	if err := s.store.db.Find(&ops, nil); err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	sortByDate(ops)
	return ops, nil
}

func (s *operationStorage) ListByFund(_ context.Context, fundCode string) ([]models.Operation, error) {
	var ops []models.Operation
	if err := s.store.db.Find(&ops, badgerhold.Where("FundCode").Eq(fundCode)); err != nil {
		return nil, fmt.Errorf("failed to list operations for fund '%s': %w", fundCode, err)
	}
	sortByDate(ops)
	return ops, nil
}

func (s *operationStorage) ListPending(ctx context.Context) ([]models.Operation, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var pending []models.Operation
	for _, op := range all {
		if op.Pending() {
			pending = append(pending, op)
		}
	}
	return pending, nil
}

func (s *operationStorage) Export(ctx context.Context) (*models.LedgerExport, error) {
	ops, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &models.LedgerExport{
		Version:    1,
		ExportTime: time.Now(),
		Operations: ops,
	}, nil
}

func (s *operationStorage) Import(ctx context.Context, data *models.LedgerExport, merge bool) (int, error) {
	if data == nil || len(data.Operations) == 0 {
		return 0, fmt.Errorf("import data contains no operations")
	}

	if !merge {
		existing, err := s.ListAll(ctx)
		if err != nil {
			return 0, err
		}
		for _, op := range existing {
			if err := s.Delete(ctx, op.ID); err != nil {
				return 0, err
			}
		}
	}

	imported := 0
	for _, op := range data.Operations {
		record := op
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now()
		}
		if err := s.store.db.Upsert(record.ID, &record); err != nil {
			return imported, fmt.Errorf("failed to import operation '%s': %w", record.ID, err)
		}
		imported++
	}

	s.logger.Info().Int("count", imported).Bool("merge", merge).Msg("Ledger imported")
	return imported, nil
}

// sortByDate orders operations ascending by date, oldest first. Ties break
// on creation time so same-day operations replay in entry order.
func sortByDate(ops []models.Operation) {
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Date != ops[j].Date {
			return ops[i].Date < ops[j].Date
		}
		return ops[i].CreatedAt.Before(ops[j].CreatedAt)
	})
}
