package inventory

import (
	"context"

	"github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
)

type UseCase interface {
	GetDrugInventory(ctx context.Context, drugID string) (*model.Inventory, error)
	GetSnapshot(ctx context.Context, drugID string) (*model.StockSnapshot, error)
	ListSnapshots(ctx context.Context, filters *dto.SnapshotFilters) ([]model.StockSnapshot, error)
	ListLowStock(ctx context.Context, page, pageSize int) ([]model.StockSnapshot, int, error)
	AdjustInventory(ctx context.Context, input *dto.AdjustInventoryInput) (*model.Inventory, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)

	// RecalculateLevels refreshes the locally calculated reorder level of every
	// active drug from its usage history. Returns the number of drugs updated.
	RecalculateLevels(ctx context.Context) (int, error)
}
