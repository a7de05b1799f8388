package alert

import (
	"context"

	"github.com/fekuna/pharmastock-service/internal/alert/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
)

type UseCase interface {
	// EvaluateAlerts reconciles open alerts with the current stock status of
	// every active drug.
	EvaluateAlerts(ctx context.Context) (*dto.EvaluationResult, error)
	ListAlerts(ctx context.Context, filters *dto.AlertFilters) ([]model.Alert, int, error)
	ListOpen(ctx context.Context) ([]model.Alert, error)
	AcknowledgeAlert(ctx context.Context, id, userID string) (*model.Alert, error)
	ResolveAlert(ctx context.Context, id string) (*model.Alert, error)
}

// EventPublisher is satisfied by broker.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event interface{}) error
}
