package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/inventory"
	"github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/cache"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type Options struct {
	UsageWindowDays int
	SafetyDays      int
}

type inventoryUseCase struct {
	repo     inventory.Repository
	cache    *cache.RedisClient
	resolver reorder.Resolver
	opts     Options
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewInventoryUseCase(repo inventory.Repository, cache *cache.RedisClient, resolver reorder.Resolver, opts Options, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:     repo,
		cache:    cache,
		resolver: resolver,
		opts:     opts,
		logger:   log,
		now:      time.Now,
	}
}

func (uc *inventoryUseCase) GetDrugInventory(ctx context.Context, drugID string) (*model.Inventory, error) {
	inv, err := uc.repo.GetByDrug(ctx, drugID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return &model.Inventory{DrugID: drugID, Quantity: 0}, nil
	}
	return inv, nil
}

func (uc *inventoryUseCase) GetSnapshot(ctx context.Context, drugID string) (*model.StockSnapshot, error) {
	s, err := uc.repo.GetSnapshot(ctx, drugID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("drug %s: %w", drugID, apperr.ErrNotFound)
	}
	s.Evaluation = uc.resolver.Evaluate(s.Candidates(), s.CurrentStock)
	return s, nil
}

func (uc *inventoryUseCase) ListSnapshots(ctx context.Context, filters *dto.SnapshotFilters) ([]model.StockSnapshot, error) {
	items, err := uc.repo.ListSnapshots(ctx, filters)
	if err != nil {
		return nil, err
	}

	out := items[:0]
	for _, s := range items {
		s.Evaluation = uc.resolver.Evaluate(s.Candidates(), s.CurrentStock)
		if filters != nil && filters.Status != "" && s.Evaluation.Status != filters.Status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

var severityRank = map[reorder.StockStatus]int{
	reorder.StatusCritical: 0,
	reorder.StatusLow:      1,
	reorder.StatusNormal:   2,
	reorder.StatusGood:     3,
}

// ListLowStock returns drugs whose status calls for reordering, most severe
// first and lowest stock first within a status.
func (uc *inventoryUseCase) ListLowStock(ctx context.Context, page, pageSize int) ([]model.StockSnapshot, int, error) {
	all, err := uc.ListSnapshots(ctx, nil)
	if err != nil {
		return nil, 0, err
	}

	low := make([]model.StockSnapshot, 0, len(all))
	for _, s := range all {
		if s.Evaluation.Status.NeedsReorder() {
			low = append(low, s)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		ri, rj := severityRank[low[i].Evaluation.Status], severityRank[low[j].Evaluation.Status]
		if ri != rj {
			return ri < rj
		}
		return low[i].CurrentStock < low[j].CurrentStock
	})

	total := len(low)
	if pageSize <= 0 {
		return low, total, nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []model.StockSnapshot{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return low[start:end], total, nil
}

func (uc *inventoryUseCase) AdjustInventory(ctx context.Context, input *dto.AdjustInventoryInput) (*model.Inventory, error) {
	if input.DrugID == "" {
		return nil, fmt.Errorf("drug id is required: %w", apperr.ErrInvalidInput)
	}
	if input.QuantityChange == 0 {
		return nil, fmt.Errorf("quantity change must not be zero: %w", apperr.ErrInvalidInput)
	}

	lockKey := fmt.Sprintf("lock:inventory:%s", input.DrugID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.String("drug_id", input.DrugID), zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(lockBackoff)
	}
	if !acquired {
		return nil, apperr.ErrBusy
	}
	defer func() {
		if err := uc.cache.ReleaseLock(context.WithoutCancel(ctx), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release inventory lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	inv, err := uc.repo.GetByDrug(ctx, input.DrugID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	if inv == nil {
		inv = &model.Inventory{
			ID:        uuid.New().String(),
			DrugID:    input.DrugID,
			Quantity:  0,
			UpdatedAt: now,
		}
	}

	quantityBefore := inv.Quantity
	if quantityBefore+input.QuantityChange < 0 {
		return nil, fmt.Errorf("drug %s has %d, change %d: %w",
			input.DrugID, quantityBefore, input.QuantityChange, apperr.ErrInsufficientStock)
	}
	inv.Quantity = quantityBefore + input.QuantityChange
	inv.UpdatedAt = now

	movementType := input.MovementType
	if movementType == "" {
		movementType = model.MovementAdjustment
	}
	if movementType == model.MovementAdjustment {
		inv.LastCountedAt = &now
	}

	movement := &model.InventoryMovement{
		ID:             uuid.New().String(),
		DrugID:         input.DrugID,
		MovementType:   movementType,
		QuantityChange: input.QuantityChange,
		QuantityBefore: quantityBefore,
		QuantityAfter:  inv.Quantity,
		ReferenceType:  optional(input.ReferenceType),
		ReferenceID:    optional(input.ReferenceID),
		Notes:          input.Reason,
		CreatedBy:      optional(input.UserID),
		CreatedAt:      now,
	}

	if err := uc.repo.AdjustStockWithMovement(ctx, inv, movement); err != nil {
		return nil, err
	}

	uc.logger.Info("inventory adjusted",
		zap.String("drug_id", input.DrugID),
		zap.String("movement_type", movementType),
		zap.Int("before", quantityBefore),
		zap.Int("after", inv.Quantity),
	)
	return inv, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) RecalculateLevels(ctx context.Context) (int, error) {
	snapshots, err := uc.repo.ListSnapshots(ctx, nil)
	if err != nil {
		return 0, err
	}

	window := uc.opts.UsageWindowDays
	since := uc.now().AddDate(0, 0, -window)

	updated := 0
	for _, s := range snapshots {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		rows, err := uc.repo.DailyUsage(ctx, s.DrugID, since)
		if err != nil {
			uc.logger.Error("failed to load daily usage", zap.String("drug_id", s.DrugID), zap.Error(err))
			continue
		}
		if len(rows) == 0 {
			if s.CalculatedReorderLevel == nil {
				continue
			}
			// no usage in the window: drop the stale level
			if err := uc.repo.SetCalculatedReorderLevel(ctx, s.DrugID, nil); err != nil {
				uc.logger.Error("failed to clear calculated reorder level", zap.String("drug_id", s.DrugID), zap.Error(err))
				continue
			}
			updated++
			continue
		}

		level := reorder.CalculateReorderLevel(usageSeries(rows, window), s.LeadTimeDays, uc.opts.SafetyDays)
		if level == nil {
			continue
		}
		if err := uc.repo.SetCalculatedReorderLevel(ctx, s.DrugID, level); err != nil {
			uc.logger.Error("failed to store calculated reorder level", zap.String("drug_id", s.DrugID), zap.Error(err))
			continue
		}
		updated++
	}

	uc.logger.Info("calculated reorder levels refreshed", zap.Int("updated", updated), zap.Int("drugs", len(snapshots)))
	return updated, nil
}

// usageSeries spreads the per-day rows over the whole window so that days
// without dispensing count as zero usage.
func usageSeries(rows []model.DailyUsage, window int) []int {
	if window < len(rows) {
		window = len(rows)
	}
	series := make([]int, window)
	for i, r := range rows {
		series[i] = r.Quantity
	}
	return series
}

func optional(s string) *string {
	if s == "" || s == "unknown" {
		return nil
	}
	return &s
}
