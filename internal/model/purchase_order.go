package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	POStatusDraft     = "draft"
	POStatusSubmitted = "submitted"
	POStatusReceived  = "received"
	POStatusCancelled = "cancelled"
)

type PurchaseOrder struct {
	BaseModel
	OrderNumber string              `db:"order_number" json:"order_number"`
	Supplier    string              `db:"supplier" json:"supplier"`
	Status      string              `db:"status" json:"status"`
	TotalCost   decimal.Decimal     `db:"total_cost" json:"total_cost"`
	Notes       string              `db:"notes" json:"notes"`
	CreatedBy   *string             `db:"created_by" json:"created_by"`
	SubmittedAt *time.Time          `db:"submitted_at" json:"submitted_at"`
	ReceivedAt  *time.Time          `db:"received_at" json:"received_at"`
	Items       []PurchaseOrderItem `db:"-" json:"items"`
}

type PurchaseOrderItem struct {
	ID              string          `db:"id" json:"id"`
	PurchaseOrderID string          `db:"purchase_order_id" json:"purchase_order_id"`
	DrugID          string          `db:"drug_id" json:"drug_id"`
	Quantity        int             `db:"quantity" json:"quantity"`
	UnitCost        decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	LineTotal       decimal.Decimal `db:"line_total" json:"line_total"`
}

var poTransitions = map[string][]string{
	POStatusDraft:     {POStatusSubmitted, POStatusCancelled},
	POStatusSubmitted: {POStatusReceived, POStatusCancelled},
}

// CanTransition reports whether an order in status from may move to to.
func CanTransition(from, to string) bool {
	for _, s := range poTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
