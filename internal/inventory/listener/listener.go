package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/inventory"
	"github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventDrugDispensed = "DrugDispensed"

// MessageReader is satisfied by broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type InventoryListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewInventoryListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting dispense event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping dispense event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type DispenseEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   DispensePayload `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type DispensePayload struct {
	PrescriptionID string                `json:"prescription_id"`
	DispensedBy    string                `json:"dispensed_by"`
	Items          []DispenseItemPayload `json:"items"`
}

type DispenseItemPayload struct {
	DrugID   string `json:"drug_id"`
	Quantity int    `json:"quantity"`
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event DispenseEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventDrugDispensed {
		return
	}

	l.logger.Info("Processing DrugDispensed event",
		zap.String("event_id", event.EventID),
		zap.String("prescription_id", event.Payload.PrescriptionID),
	)

	userID := event.Payload.DispensedBy
	if userID == "" {
		userID = "system"
	}

	for _, item := range event.Payload.Items {
		if item.Quantity <= 0 {
			l.logger.Warn("Skipping dispense item with non-positive quantity",
				zap.String("drug_id", item.DrugID), zap.Int("quantity", item.Quantity))
			continue
		}

		input := &dto.AdjustInventoryInput{
			DrugID:         item.DrugID,
			QuantityChange: -item.Quantity,
			MovementType:   model.MovementDispense,
			Reason:         "Dispensed",
			ReferenceID:    event.Payload.PrescriptionID,
			ReferenceType:  "prescription",
			UserID:         userID,
		}

		if _, err := l.uc.AdjustInventory(ctx, input); err != nil {
			l.logger.Error("Failed to adjust inventory for dispensed item",
				zap.String("prescription_id", event.Payload.PrescriptionID),
				zap.String("drug_id", item.DrugID),
				zap.Bool("insufficient", errors.Is(err, apperr.ErrInsufficientStock)),
				zap.Error(err),
			)
		}
	}
}
