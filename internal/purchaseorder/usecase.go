package purchaseorder

import (
	"context"

	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/purchaseorder/dto"
)

type UseCase interface {
	SuggestOrders(ctx context.Context) ([]dto.Suggestion, error)
	CreatePurchaseOrder(ctx context.Context, input *dto.CreatePurchaseOrderInput) (*model.PurchaseOrder, error)
	// CreateFromSuggestions drafts one order covering every current suggestion.
	CreateFromSuggestions(ctx context.Context, supplier, createdBy string) (*model.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id string) (*model.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, filters *dto.PurchaseOrderFilters) ([]model.PurchaseOrder, int, error)
	ListOpen(ctx context.Context) ([]model.PurchaseOrder, error)
	Submit(ctx context.Context, id string) (*model.PurchaseOrder, error)
	Receive(ctx context.Context, id, userID string) (*model.PurchaseOrder, error)
	Cancel(ctx context.Context, id string) (*model.PurchaseOrder, error)
}

// EventPublisher is satisfied by broker.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event interface{}) error
}
