package dto

import (
	"time"

	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/shopspring/decimal"
)

type PurchaseOrderFilters struct {
	Status   string
	Page     int
	PageSize int
}

// Suggestion is a proposed order line for a drug at or below its reorder level.
type Suggestion struct {
	DrugID            string              `json:"drug_id"`
	DrugName          string              `json:"drug_name"`
	Unit              string              `json:"unit"`
	CurrentStock      int                 `json:"current_stock"`
	ReorderLevel      int                 `json:"reorder_level"`
	Source            reorder.Source      `json:"reorder_level_source"`
	Status            reorder.StockStatus `json:"status"`
	SuggestedQuantity int                 `json:"suggested_quantity"`
	UnitCost          decimal.Decimal     `json:"unit_cost"`
	LineCost          decimal.Decimal     `json:"line_cost"`
}

type PurchaseOrderCreatedEvent struct {
	EventType     string          `json:"event_type"`
	PurchaseOrder string          `json:"purchase_order_id"`
	OrderNumber   string          `json:"order_number"`
	Supplier      string          `json:"supplier"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	ItemCount     int             `json:"item_count"`
	CreatedBy     string          `json:"created_by"`
	Timestamp     time.Time       `json:"timestamp"`
}
