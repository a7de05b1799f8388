package usecase

import (
	"testing"

	"github.com/fekuna/pharmastock-service/internal/forecast/dto"
	"github.com/stretchr/testify/assert"
)

func flat(n int, demand float64) []dto.DemandForecast {
	out := make([]dto.DemandForecast, n)
	for i := range out {
		out[i].PredictedDemand = demand
	}
	return out
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		level     int
		forecasts []dto.DemandForecast
		want      dto.RecommendationLevel
		days      float64
	}{
		{"at reorder level", 100, 100, flat(7, 1), dto.RecommendUrgent, 100},
		{"below level even with no demand", 10, 50, nil, dto.RecommendUrgent, 999},
		{"three days of cover", 150, 100, flat(7, 50), dto.RecommendCritical, 3},
		{"six days of cover", 300, 100, flat(7, 50), dto.RecommendWarning, 6},
		{"plenty, capped at 30", 1000, 100, flat(7, 10), dto.RecommendGood, 30},
		{"no demand", 200, 100, flat(7, 0), dto.RecommendGood, 30},
		{"average over horizon length", 280, 100, flat(14, 20), dto.RecommendGood, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommend(tt.stock, tt.level, tt.forecasts)
			assert.Equal(t, tt.want, got.Level)
			assert.InDelta(t, tt.days, got.DaysOfStock, 0.05)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestTotalFirstDays(t *testing.T) {
	f := []dto.DemandForecast{{PredictedDemand: 1.04}, {PredictedDemand: 2.02}, {PredictedDemand: 100}}
	assert.InDelta(t, 3.1, totalFirstDays(f, 2), 1e-9)
	assert.InDelta(t, 103.1, totalFirstDays(f, 7), 1e-9)
}
