package inventory

import (
	"context"
	"time"

	"github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
)

type Repository interface {
	GetByDrug(ctx context.Context, drugID string) (*model.Inventory, error)

	// Snapshots join drugs, current stock and the latest reorder calculation.
	GetSnapshot(ctx context.Context, drugID string) (*model.StockSnapshot, error)
	ListSnapshots(ctx context.Context, filters *dto.SnapshotFilters) ([]model.StockSnapshot, error)

	// Movements / Audit
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
	DailyUsage(ctx context.Context, drugID string, since time.Time) ([]model.DailyUsage, error)

	// Transaction support
	AdjustStockWithMovement(ctx context.Context, inv *model.Inventory, movement *model.InventoryMovement) error

	SetCalculatedReorderLevel(ctx context.Context, drugID string, level *int) error
}
