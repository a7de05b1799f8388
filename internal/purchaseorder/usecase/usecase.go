package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/pharmastock-service/internal/apperr"
	invdto "github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/purchaseorder"
	"github.com/fekuna/pharmastock-service/internal/purchaseorder/dto"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const EventPurchaseOrderCreated = "PurchaseOrderCreated"

// Inventory is satisfied by inventory.UseCase.
type Inventory interface {
	ListSnapshots(ctx context.Context, filters *invdto.SnapshotFilters) ([]model.StockSnapshot, error)
	AdjustInventory(ctx context.Context, input *invdto.AdjustInventoryInput) (*model.Inventory, error)
}

// DrugCatalog is satisfied by drug.UseCase.
type DrugCatalog interface {
	GetDrug(ctx context.Context, id string) (*model.Drug, error)
}

type purchaseOrderUseCase struct {
	repo      purchaseorder.Repository
	inventory Inventory
	drugs     DrugCatalog
	publisher purchaseorder.EventPublisher
	topic     string
	resolver  reorder.Resolver
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewPurchaseOrderUseCase(
	repo purchaseorder.Repository,
	inventory Inventory,
	drugs DrugCatalog,
	publisher purchaseorder.EventPublisher,
	topic string,
	resolver reorder.Resolver,
	log logger.ZapLogger,
) purchaseorder.UseCase {
	return &purchaseOrderUseCase{
		repo:      repo,
		inventory: inventory,
		drugs:     drugs,
		publisher: publisher,
		topic:     topic,
		resolver:  resolver,
		logger:    log,
		now:       time.Now,
	}
}

// SuggestedQuantity tops stock back up to twice the effective level, and never
// orders less than the drug's standard reorder quantity.
func SuggestedQuantity(currentStock, effectiveLevel, reorderQuantity int) int {
	qty := 2*effectiveLevel - currentStock
	if reorderQuantity > qty {
		qty = reorderQuantity
	}
	if qty < 0 {
		return 0
	}
	return qty
}

func (uc *purchaseOrderUseCase) SuggestOrders(ctx context.Context) ([]dto.Suggestion, error) {
	snapshots, err := uc.inventory.ListSnapshots(ctx, nil)
	if err != nil {
		return nil, err
	}

	var out []dto.Suggestion
	for i := range snapshots {
		s := &snapshots[i]
		eval := uc.resolver.Evaluate(s.Candidates(), s.CurrentStock)
		if !eval.Status.NeedsReorder() {
			continue
		}

		qty := SuggestedQuantity(s.CurrentStock, eval.EffectiveLevel, s.ReorderQuantity)
		if qty == 0 {
			continue
		}
		out = append(out, dto.Suggestion{
			DrugID:            s.DrugID,
			DrugName:          s.DrugName,
			Unit:              s.Unit,
			CurrentStock:      s.CurrentStock,
			ReorderLevel:      eval.EffectiveLevel,
			Source:            eval.Source,
			Status:            eval.Status,
			SuggestedQuantity: qty,
			UnitCost:          s.UnitCost,
			LineCost:          s.UnitCost.Mul(decimal.NewFromInt(int64(qty))),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status == reorder.StatusCritical
		}
		return out[i].CurrentStock < out[j].CurrentStock
	})
	return out, nil
}

func (uc *purchaseOrderUseCase) CreatePurchaseOrder(ctx context.Context, input *dto.CreatePurchaseOrderInput) (*model.PurchaseOrder, error) {
	if strings.TrimSpace(input.Supplier) == "" {
		return nil, fmt.Errorf("%w: supplier is required", apperr.ErrInvalidInput)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", apperr.ErrInvalidInput)
	}

	now := uc.now()
	id := uuid.New().String()
	po := &model.PurchaseOrder{
		BaseModel:   model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		OrderNumber: orderNumber(now, id),
		Supplier:    input.Supplier,
		Status:      model.POStatusDraft,
		Notes:       input.Notes,
		TotalCost:   decimal.Zero,
	}
	if input.CreatedBy != "" {
		createdBy := input.CreatedBy
		po.CreatedBy = &createdBy
	}

	seen := map[string]bool{}
	for _, in := range input.Items {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", apperr.ErrInvalidInput, in.DrugID)
		}
		if seen[in.DrugID] {
			return nil, fmt.Errorf("%w: drug %s listed twice", apperr.ErrInvalidInput, in.DrugID)
		}
		seen[in.DrugID] = true

		d, err := uc.drugs.GetDrug(ctx, in.DrugID)
		if err != nil {
			return nil, err
		}
		if !d.IsActive {
			return nil, fmt.Errorf("%w: drug %s is inactive", apperr.ErrInvalidInput, in.DrugID)
		}

		cost := d.UnitCost
		if in.UnitCost != nil {
			if in.UnitCost.IsNegative() {
				return nil, fmt.Errorf("%w: unit cost for %s must not be negative", apperr.ErrInvalidInput, in.DrugID)
			}
			cost = *in.UnitCost
		}

		line := cost.Mul(decimal.NewFromInt(int64(in.Quantity)))
		po.Items = append(po.Items, model.PurchaseOrderItem{
			ID:              uuid.New().String(),
			PurchaseOrderID: id,
			DrugID:          in.DrugID,
			Quantity:        in.Quantity,
			UnitCost:        cost,
			LineTotal:       line,
		})
		po.TotalCost = po.TotalCost.Add(line)
	}

	if err := uc.repo.Create(ctx, po); err != nil {
		return nil, err
	}

	uc.logger.Info("purchase order created",
		zap.String("id", po.ID),
		zap.String("order_number", po.OrderNumber),
		zap.String("total_cost", po.TotalCost.StringFixed(2)),
	)
	uc.publishCreated(ctx, po, input.CreatedBy)
	return po, nil
}

func (uc *purchaseOrderUseCase) CreateFromSuggestions(ctx context.Context, supplier, createdBy string) (*model.PurchaseOrder, error) {
	suggestions, err := uc.SuggestOrders(ctx)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: nothing needs reordering", apperr.ErrInvalidInput)
	}

	input := &dto.CreatePurchaseOrderInput{
		Supplier:  supplier,
		Notes:     "Generated from reorder suggestions",
		CreatedBy: createdBy,
	}
	for _, s := range suggestions {
		cost := s.UnitCost
		input.Items = append(input.Items, dto.ItemInput{DrugID: s.DrugID, Quantity: s.SuggestedQuantity, UnitCost: &cost})
	}
	return uc.CreatePurchaseOrder(ctx, input)
}

func (uc *purchaseOrderUseCase) publishCreated(ctx context.Context, po *model.PurchaseOrder, createdBy string) {
	if uc.publisher == nil {
		return
	}
	event := dto.PurchaseOrderCreatedEvent{
		EventType:     EventPurchaseOrderCreated,
		PurchaseOrder: po.ID,
		OrderNumber:   po.OrderNumber,
		Supplier:      po.Supplier,
		TotalCost:     po.TotalCost,
		ItemCount:     len(po.Items),
		CreatedBy:     createdBy,
		Timestamp:     po.CreatedAt,
	}
	if err := uc.publisher.Publish(ctx, uc.topic, po.ID, event); err != nil {
		uc.logger.Error("failed to publish purchase order event", zap.String("id", po.ID), zap.Error(err))
	}
}

func (uc *purchaseOrderUseCase) GetPurchaseOrder(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	po, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, fmt.Errorf("purchase order %s: %w", id, apperr.ErrNotFound)
	}
	return po, nil
}

func (uc *purchaseOrderUseCase) ListPurchaseOrders(ctx context.Context, filters *dto.PurchaseOrderFilters) ([]model.PurchaseOrder, int, error) {
	if filters == nil {
		filters = &dto.PurchaseOrderFilters{}
	}
	switch filters.Status {
	case "", model.POStatusDraft, model.POStatusSubmitted, model.POStatusReceived, model.POStatusCancelled:
	default:
		return nil, 0, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidInput, filters.Status)
	}
	return uc.repo.List(ctx, filters)
}

func (uc *purchaseOrderUseCase) ListOpen(ctx context.Context) ([]model.PurchaseOrder, error) {
	return uc.repo.ListOpen(ctx)
}

func (uc *purchaseOrderUseCase) Submit(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	return uc.transition(ctx, id, model.POStatusSubmitted)
}

func (uc *purchaseOrderUseCase) Cancel(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	return uc.transition(ctx, id, model.POStatusCancelled)
}

// Receive books every line into inventory. The status is claimed first so a
// concurrent second receipt fails instead of double counting stock.
func (uc *purchaseOrderUseCase) Receive(ctx context.Context, id, userID string) (*model.PurchaseOrder, error) {
	po, err := uc.transition(ctx, id, model.POStatusReceived)
	if err != nil {
		return nil, err
	}

	booked := make([]string, 0, len(po.Items))
	for _, item := range po.Items {
		_, err := uc.inventory.AdjustInventory(ctx, &invdto.AdjustInventoryInput{
			DrugID:         item.DrugID,
			QuantityChange: item.Quantity,
			MovementType:   model.MovementPurchaseReceipt,
			Reason:         "Purchase order " + po.OrderNumber + " received",
			ReferenceID:    po.ID,
			ReferenceType:  "purchase_order",
			UserID:         userID,
		})
		if err != nil {
			uc.logger.Error("failed to book received item into inventory",
				zap.String("purchase_order_id", po.ID),
				zap.String("drug_id", item.DrugID),
				zap.Int("quantity", item.Quantity),
				zap.Strings("booked", booked),
				zap.Error(err),
			)
			done := "none"
			if len(booked) > 0 {
				done = strings.Join(booked, ", ")
			}
			return nil, fmt.Errorf("receive %s, item %s (already booked: %s): %w", po.OrderNumber, item.DrugID, done, err)
		}
		booked = append(booked, item.DrugID)
	}
	return po, nil
}

func (uc *purchaseOrderUseCase) transition(ctx context.Context, id, to string) (*model.PurchaseOrder, error) {
	po, err := uc.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(po.Status, to) {
		return nil, fmt.Errorf("%w: cannot move purchase order from %s to %s", apperr.ErrConflict, po.Status, to)
	}

	now := uc.now()
	ok, err := uc.repo.UpdateStatus(ctx, id, po.Status, to, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: purchase order %s changed concurrently", apperr.ErrConflict, id)
	}

	po.Status = to
	po.UpdatedAt = now
	switch to {
	case model.POStatusSubmitted:
		po.SubmittedAt = &now
	case model.POStatusReceived:
		po.ReceivedAt = &now
	}
	return po, nil
}

func orderNumber(now time.Time, id string) string {
	return fmt.Sprintf("PO-%s-%s", now.Format("20060102"), strings.ToUpper(strings.ReplaceAll(id, "-", "")[:6]))
}
