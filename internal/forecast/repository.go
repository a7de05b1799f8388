package forecast

import (
	"context"

	"github.com/fekuna/pharmastock-service/internal/model"
)

// Repository persists intelligent reorder levels.
type Repository interface {
	InsertCalculation(ctx context.Context, calc *model.ReorderCalculation) error
	ListCalculations(ctx context.Context, drugID string, limit int) ([]model.ReorderCalculation, error)
}
