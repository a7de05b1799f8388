package drug

import (
	"context"

	"github.com/fekuna/pharmastock-service/internal/drug/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
)

type UseCase interface {
	CreateDrug(ctx context.Context, input *dto.CreateDrugInput) (*model.Drug, error)
	GetDrug(ctx context.Context, id string) (*model.Drug, error)
	ListDrugs(ctx context.Context, filters *dto.DrugFilters) ([]model.Drug, int, error)
	UpdateDrug(ctx context.Context, input *dto.UpdateDrugInput) (*model.Drug, error)
	DeleteDrug(ctx context.Context, id string) error

	// SetManualReorderLevel stores the operator-configured level. nil clears it.
	SetManualReorderLevel(ctx context.Context, id string, level *int) (*model.Drug, error)
}
