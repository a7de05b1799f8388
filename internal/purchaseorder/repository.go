package purchaseorder

import (
	"context"
	"time"

	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/purchaseorder/dto"
)

type Repository interface {
	// Create stores the header and its items in one transaction.
	Create(ctx context.Context, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id string) (*model.PurchaseOrder, error)
	List(ctx context.Context, filters *dto.PurchaseOrderFilters) ([]model.PurchaseOrder, int, error)
	// ListOpen returns draft and submitted orders without their items.
	ListOpen(ctx context.Context) ([]model.PurchaseOrder, error)
	// UpdateStatus moves the order from one status to another and reports
	// false when the order was no longer in status from.
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error)
}
