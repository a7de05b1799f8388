package dto

import (
	"time"

	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalDrugs      int                         `json:"total_drugs"`
	ByStatus        map[reorder.StockStatus]int `json:"by_status"`
	BySource        map[reorder.Source]int      `json:"by_source"`
	TotalStockValue decimal.Decimal             `json:"total_stock_value"`
	OpenAlerts      AlertCounts                 `json:"open_alerts"`
	OpenOrders      OrderCounts                 `json:"open_purchase_orders"`
	TopCritical     []CriticalDrug              `json:"top_critical"`
	GeneratedAt     time.Time                   `json:"generated_at"`
}

type AlertCounts struct {
	Total        int `json:"total"`
	Critical     int `json:"critical"`
	Warning      int `json:"warning"`
	Acknowledged int `json:"acknowledged"`
}

type OrderCounts struct {
	Draft     int             `json:"draft"`
	Submitted int             `json:"submitted"`
	Value     decimal.Decimal `json:"value"`
}

type CriticalDrug struct {
	DrugID         string         `json:"drug_id"`
	DrugName       string         `json:"drug_name"`
	CurrentStock   int            `json:"current_stock"`
	EffectiveLevel int            `json:"effective_reorder_level"`
	Source         reorder.Source `json:"reorder_level_source"`
	// CoverRatio is stock as a fraction of the effective level.
	CoverRatio float64 `json:"cover_ratio"`
}
