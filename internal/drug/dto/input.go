package dto

import "github.com/shopspring/decimal"

type CreateDrugInput struct {
	CategoryID      string
	MLDrugID        *int
	Name            string
	GenericName     string
	Unit            string
	ReorderLevel    *int // nil falls back to the configured default
	ReorderQuantity int
	LeadTimeDays    int
	UnitCost        decimal.Decimal
}

type UpdateDrugInput struct {
	ID              string
	CategoryID      string
	MLDrugID        *int
	Name            string
	GenericName     string
	Unit            string
	ReorderQuantity int
	LeadTimeDays    int
	UnitCost        decimal.Decimal
	IsActive        bool
}
