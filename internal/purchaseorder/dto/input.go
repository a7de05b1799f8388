package dto

import "github.com/shopspring/decimal"

type CreatePurchaseOrderInput struct {
	Supplier  string
	Notes     string
	CreatedBy string
	Items     []ItemInput
}

type ItemInput struct {
	DrugID   string
	Quantity int
	// UnitCost overrides the catalog cost when set.
	UnitCost *decimal.Decimal
}
