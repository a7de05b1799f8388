package model

import "time"

const (
	AlertOutOfStock    = "out_of_stock"
	AlertCriticalStock = "critical_stock"
	AlertLowStock      = "low_stock"

	SeverityCritical = "critical"
	SeverityWarning  = "warning"

	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

type Alert struct {
	ID             string     `db:"id" json:"id"`
	DrugID         string     `db:"drug_id" json:"drug_id"`
	Type           string     `db:"type" json:"type"`
	Severity       string     `db:"severity" json:"severity"`
	Status         string     `db:"status" json:"status"`
	Message        string     `db:"message" json:"message"`
	CurrentStock   int        `db:"current_stock" json:"current_stock"`
	ReorderLevel   int        `db:"reorder_level" json:"reorder_level"`
	AcknowledgedBy *string    `db:"acknowledged_by" json:"acknowledged_by"`
	AcknowledgedAt *time.Time `db:"acknowledged_at" json:"acknowledged_at"`
	ResolvedAt     *time.Time `db:"resolved_at" json:"resolved_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Open reports whether the alert still needs attention.
func (a *Alert) Open() bool {
	return a.Status == AlertStatusActive || a.Status == AlertStatusAcknowledged
}
