package drug

import (
	"context"

	"github.com/fekuna/pharmastock-service/internal/drug/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, drug *model.Drug) error
	FindByID(ctx context.Context, id string) (*model.Drug, error)
	FindAll(ctx context.Context, filters *dto.DrugFilters) ([]model.Drug, int, error)
	Update(ctx context.Context, drug *model.Drug) error
	Deactivate(ctx context.Context, id string) error
	SetManualReorderLevel(ctx context.Context, id string, level *int) error

	IsNameUnique(ctx context.Context, name, excludeID string) (bool, error)
}
