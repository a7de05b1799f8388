package dto

import "time"

type AlertFilters struct {
	Status   string
	Severity string
	DrugID   string
	Page     int
	PageSize int
}

// EvaluationResult summarises one pass of EvaluateAlerts.
type EvaluationResult struct {
	Evaluated int `json:"evaluated"`
	Created   int `json:"created"`
	Resolved  int `json:"resolved"`
}

// AlertRaisedEvent is published for every new alert.
type AlertRaisedEvent struct {
	EventType    string    `json:"event_type"`
	AlertID      string    `json:"alert_id"`
	DrugID       string    `json:"drug_id"`
	DrugName     string    `json:"drug_name"`
	Type         string    `json:"type"`
	Severity     string    `json:"severity"`
	CurrentStock int       `json:"current_stock"`
	ReorderLevel int       `json:"reorder_level"`
	Source       string    `json:"reorder_level_source"`
	Timestamp    time.Time `json:"timestamp"`
}
