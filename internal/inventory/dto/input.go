package dto

type AdjustInventoryInput struct {
	DrugID         string
	QuantityChange int
	MovementType   string // adjustment, dispense, purchase_receipt
	Reason         string
	ReferenceID    string
	ReferenceType  string
	UserID         string
}
