package dto

import (
	"time"

	"github.com/fekuna/pharmastock-service/internal/reorder"
)

type SnapshotFilters struct {
	DrugIDs    []string
	CategoryID string
	Status     reorder.StockStatus // derived, applied after resolution
}

type MovementFilters struct {
	DrugID       string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}
