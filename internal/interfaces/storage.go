// Package interfaces defines service contracts for Fundwatch
package interfaces

import (
	"context"

	"github.com/wyli/fundwatch/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	OperationStore() OperationStore
	HoldingStore() HoldingStore
	FundStore() FundStore

	// Lifecycle
	Close() error
}

// OperationStore manages the buy/sell/transfer operation ledger.
type OperationStore interface {
	// Add persists a new operation, assigning an ID when absent.
	Add(ctx context.Context, op *models.Operation) error

	// Update replaces the stored operation with the given ID.
	Update(ctx context.Context, op *models.Operation) error

	// Delete removes an operation from the ledger. Deleting is retroactive:
	// subsequent replays no longer see the operation.
	Delete(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (*models.Operation, error)
	ListAll(ctx context.Context) ([]models.Operation, error)
	ListByFund(ctx context.Context, fundCode string) ([]models.Operation, error)

	// ListPending returns operations still awaiting NAV confirmation.
	ListPending(ctx context.Context) ([]models.Operation, error)

	// Export dumps the ledger; Import loads one, merging with or replacing
	// existing records.
	Export(ctx context.Context) (*models.LedgerExport, error)
	Import(ctx context.Context, data *models.LedgerExport, merge bool) (int, error)
}

// HoldingStore manages authoritative current holdings per fund.
type HoldingStore interface {
	// Save persists a holding. Saving a holding with non-positive shares
	// deletes it; "no position" is represented by absence.
	Save(ctx context.Context, holding *models.Holding) error
	Get(ctx context.Context, fundCode string) (*models.Holding, error)
	Delete(ctx context.Context, fundCode string) error
	List(ctx context.Context) ([]models.Holding, error)
}

// FundStore manages the tracked fund list.
type FundStore interface {
	Save(ctx context.Context, fund *models.Fund) error
	Get(ctx context.Context, code string) (*models.Fund, error)
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]models.Fund, error)
}
