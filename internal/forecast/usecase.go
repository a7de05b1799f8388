package forecast

import (
	"context"

	"github.com/fekuna/pharmastock-service/internal/forecast/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
)

type UseCase interface {
	Health(ctx context.Context) (*dto.HealthResponse, error)
	ListModels(ctx context.Context) ([]dto.ModelInfo, error)
	ForecastDrug(ctx context.Context, drugID string, days int) (*dto.EnrichedForecast, error)
	ForecastAll(ctx context.Context, days int) ([]dto.EnrichedForecast, error)
	ListCalculations(ctx context.Context, drugID string, limit int) ([]model.ReorderCalculation, error)

	// ComputeIntelligentLevels derives an intelligent reorder level for every
	// drug linked to a forecasting model and records it.
	ComputeIntelligentLevels(ctx context.Context) (*dto.IntelligentLevelResult, error)
}
