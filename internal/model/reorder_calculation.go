package model

import "time"

// ReorderCalculation records one intelligent reorder level derived from a
// demand forecast. The most recent row per drug is the live candidate.
type ReorderCalculation struct {
	ID                      string    `db:"id" json:"id"`
	DrugID                  string    `db:"drug_id" json:"drug_id"`
	CalculationDate         time.Time `db:"calculation_date" json:"calculation_date"`
	IntelligentReorderLevel int       `db:"intelligent_reorder_level" json:"intelligent_reorder_level"`
	PredictedDemand         float64   `db:"predicted_demand" json:"predicted_demand"`
	ForecastDays            int       `db:"forecast_days" json:"forecast_days"`
	LeadTimeDays            int       `db:"lead_time_days" json:"lead_time_days"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
}
