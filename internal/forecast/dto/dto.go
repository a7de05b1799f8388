package dto

import (
	"time"

	"github.com/fekuna/pharmastock-service/internal/reorder"
)

// Wire types of the forecasting service.

type HealthResponse struct {
	Status       string `json:"status"`
	ModelsLoaded int    `json:"models_loaded"`
	Timestamp    string `json:"timestamp"`
}

type ModelInfo struct {
	DrugID      int    `json:"drug_id"`
	DrugName    string `json:"drug_name"`
	Unit        string `json:"unit"`
	ModelLoaded bool   `json:"model_loaded"`
}

type ForecastRequest struct {
	Days int `json:"days"`
}

type DemandForecast struct {
	Date            string  `json:"date"`
	PredictedDemand float64 `json:"predicted_demand"`
	DayOfWeek       string  `json:"day_of_week"`
}

type ForecastResponse struct {
	DrugID              int              `json:"drug_id"`
	DrugName            string           `json:"drug_name"`
	Unit                string           `json:"unit"`
	CurrentStock        int              `json:"current_stock"`
	ReorderLevel        int              `json:"reorder_level"`
	Forecasts           []DemandForecast `json:"forecasts"`
	TotalPredicted7Days float64          `json:"total_predicted_7_days"`
	Recommendation      string           `json:"recommendation"`
	GeneratedAt         string           `json:"generated_at"`
}

type AllForecastsResponse struct {
	Forecasts   []ForecastResponse `json:"forecasts"`
	GeneratedAt string             `json:"generated_at"`
}

// Local view.

type RecommendationLevel string

const (
	RecommendUrgent   RecommendationLevel = "urgent"
	RecommendCritical RecommendationLevel = "critical"
	RecommendWarning  RecommendationLevel = "warning"
	RecommendGood     RecommendationLevel = "good"
)

type Recommendation struct {
	Level       RecommendationLevel `json:"level"`
	DaysOfStock float64             `json:"days_of_stock"`
	Message     string              `json:"message"`
}

// EnrichedForecast is a remote forecast annotated with local stock and the
// locally resolved reorder level.
type EnrichedForecast struct {
	DrugID              string              `json:"drug_id"`
	MLDrugID            int                 `json:"ml_drug_id"`
	DrugName            string              `json:"drug_name"`
	Unit                string              `json:"unit"`
	CurrentStock        int                 `json:"current_stock"`
	ReorderLevel        int                 `json:"reorder_level"`
	ReorderLevelSource  reorder.Source      `json:"reorder_level_source"`
	RemoteReorderLevel  int                 `json:"remote_reorder_level"`
	Status              reorder.StockStatus `json:"status"`
	Forecasts           []DemandForecast    `json:"forecasts"`
	TotalPredicted7Days float64             `json:"total_predicted_7_days"`
	Recommendation      Recommendation      `json:"recommendation"`
	GeneratedAt         time.Time           `json:"generated_at"`
}

// IntelligentLevelResult summarises one ComputeIntelligentLevels run.
type IntelligentLevelResult struct {
	Computed int      `json:"computed"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}
