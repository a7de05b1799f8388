package model

import (
	"github.com/shopspring/decimal"
)

type Drug struct {
	BaseModel
	CategoryID             *string         `db:"category_id" json:"category_id"`
	MLDrugID               *int            `db:"ml_drug_id" json:"ml_drug_id"` // key in the forecasting service
	Name                   string          `db:"name" json:"name"`
	GenericName            *string         `db:"generic_name" json:"generic_name"`
	Unit                   string          `db:"unit" json:"unit"`
	ReorderLevel           *int            `db:"reorder_level" json:"reorder_level"`
	CalculatedReorderLevel *int            `db:"calculated_reorder_level" json:"calculated_reorder_level"`
	ReorderQuantity        int             `db:"reorder_quantity" json:"reorder_quantity"`
	LeadTimeDays           int             `db:"lead_time_days" json:"lead_time_days"`
	UnitCost               decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	IsActive               bool            `db:"is_active" json:"is_active"`
}
