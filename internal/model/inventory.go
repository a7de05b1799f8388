package model

import (
	"time"

	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/shopspring/decimal"
)

const (
	MovementAdjustment      = "adjustment"
	MovementDispense        = "dispense"
	MovementPurchaseReceipt = "purchase_receipt"
)

type Inventory struct {
	ID            string     `db:"id" json:"id"`
	DrugID        string     `db:"drug_id" json:"drug_id"`
	Quantity      int        `db:"quantity" json:"quantity"`
	LastCountedAt *time.Time `db:"last_counted_at" json:"last_counted_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type InventoryMovement struct {
	ID             string    `db:"id" json:"id"`
	DrugID         string    `db:"drug_id" json:"drug_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// StockSnapshot is one drug joined with its current stock and the three
// reorder-level candidates.
type StockSnapshot struct {
	DrugID                  string          `db:"drug_id" json:"drug_id"`
	MLDrugID                *int            `db:"ml_drug_id" json:"ml_drug_id"`
	DrugName                string          `db:"drug_name" json:"drug_name"`
	Unit                    string          `db:"unit" json:"unit"`
	CurrentStock            int             `db:"current_stock" json:"current_stock"`
	ReorderLevel            *int            `db:"reorder_level" json:"reorder_level"`
	CalculatedReorderLevel  *int            `db:"calculated_reorder_level" json:"calculated_reorder_level"`
	IntelligentReorderLevel *int            `db:"intelligent_reorder_level" json:"intelligent_reorder_level"`
	ReorderQuantity         int             `db:"reorder_quantity" json:"reorder_quantity"`
	LeadTimeDays            int             `db:"lead_time_days" json:"lead_time_days"`
	UnitCost                decimal.Decimal `db:"unit_cost" json:"unit_cost"`

	Evaluation reorder.Evaluation `db:"-" json:"evaluation"`
}

func (s *StockSnapshot) Candidates() reorder.Candidates {
	return reorder.Candidates{
		Intelligent: s.IntelligentReorderLevel,
		Calculated:  s.CalculatedReorderLevel,
		Manual:      s.ReorderLevel,
	}
}

// DailyUsage is the total dispensed quantity for one calendar day.
type DailyUsage struct {
	Day      time.Time `db:"day" json:"day"`
	Quantity int       `db:"quantity" json:"quantity"`
}
