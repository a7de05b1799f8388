package reorder

// StockStatus is the derived health of a drug's stock. It is recomputed on
// every read and never persisted.
type StockStatus string

const (
	StatusCritical StockStatus = "critical"
	StatusLow      StockStatus = "low"
	StatusNormal   StockStatus = "normal"
	StatusGood     StockStatus = "good"
)

// AllStatuses lists the statuses from most to least severe.
var AllStatuses = []StockStatus{StatusCritical, StatusLow, StatusNormal, StatusGood}

// ClassifyStockStatus buckets currentStock relative to the effective reorder
// level. Bucket boundaries are inclusive of the more severe side: stock equal
// to half the level is critical, equal to the level is low, equal to twice
// the level is normal.
func ClassifyStockStatus(currentStock, effectiveLevel int) StockStatus {
	stock := float64(currentStock)
	level := float64(effectiveLevel)

	switch {
	case currentStock == 0:
		return StatusCritical
	case stock <= level*0.5:
		return StatusCritical
	case stock <= level:
		return StatusLow
	case stock <= level*2:
		return StatusNormal
	default:
		return StatusGood
	}
}

// NeedsReorder reports whether a drug in status s should get a purchase
// order suggestion.
func (s StockStatus) NeedsReorder() bool {
	return s == StatusCritical || s == StatusLow
}

// Valid reports whether s is one of the known statuses.
func (s StockStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}
