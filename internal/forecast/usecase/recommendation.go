package usecase

import (
	"fmt"
	"math"

	"github.com/fekuna/pharmastock-service/internal/forecast/dto"
)

const (
	noDemandDays    = 999.0
	maxReportedDays = 30.0
)

// Recommend turns stock, the effective reorder level and the demand forecast
// into an ordering recommendation. Days of stock is current stock over the
// average predicted daily demand.
func Recommend(currentStock, reorderLevel int, forecasts []dto.DemandForecast) dto.Recommendation {
	days := daysOfStock(currentStock, forecasts)

	switch {
	case currentStock <= reorderLevel:
		return dto.Recommendation{
			Level:       dto.RecommendUrgent,
			DaysOfStock: days,
			Message:     "URGENT: Stock below reorder level. Order immediately!",
		}
	case days <= 3:
		return dto.Recommendation{
			Level:       dto.RecommendCritical,
			DaysOfStock: days,
			Message:     fmt.Sprintf("Critical: Stock will last only %.0f days. Order now!", days),
		}
	case days <= 7:
		return dto.Recommendation{
			Level:       dto.RecommendWarning,
			DaysOfStock: days,
			Message:     fmt.Sprintf("Warning: Stock will last %.0f days. Consider ordering soon.", days),
		}
	default:
		days = math.Min(days, maxReportedDays)
		return dto.Recommendation{
			Level:       dto.RecommendGood,
			DaysOfStock: days,
			Message:     fmt.Sprintf("Good: Stock sufficient for %.0f days.", days),
		}
	}
}

func daysOfStock(currentStock int, forecasts []dto.DemandForecast) float64 {
	var total float64
	for _, f := range forecasts {
		total += math.Max(0, f.PredictedDemand)
	}
	if total <= 0 {
		return noDemandDays
	}
	daily := total / float64(len(forecasts))
	return round1(float64(currentStock) / daily)
}

func totalFirstDays(forecasts []dto.DemandForecast, n int) float64 {
	var total float64
	for i, f := range forecasts {
		if i >= n {
			break
		}
		total += f.PredictedDemand
	}
	return round1(total)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
