package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/fekuna/pharmastock-service/internal/dashboard"
	"github.com/fekuna/pharmastock-service/internal/dashboard/dto"
	invdto "github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/cache"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	summaryCacheKey = "dashboard:summary"
	summaryCacheTTL = time.Minute
	topCriticalMax  = 10
)

// SnapshotProvider is satisfied by inventory.UseCase.
type SnapshotProvider interface {
	ListSnapshots(ctx context.Context, filters *invdto.SnapshotFilters) ([]model.StockSnapshot, error)
}

// AlertSource is satisfied by alert.UseCase.
type AlertSource interface {
	ListOpen(ctx context.Context) ([]model.Alert, error)
}

// OrderSource is satisfied by purchaseorder.UseCase.
type OrderSource interface {
	ListOpen(ctx context.Context) ([]model.PurchaseOrder, error)
}

type dashboardUseCase struct {
	snapshots SnapshotProvider
	alerts    AlertSource
	orders    OrderSource
	cache     *cache.RedisClient
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewDashboardUseCase(
	snapshots SnapshotProvider,
	alerts AlertSource,
	orders OrderSource,
	cache *cache.RedisClient,
	log logger.ZapLogger,
) dashboard.UseCase {
	return &dashboardUseCase{
		snapshots: snapshots,
		alerts:    alerts,
		orders:    orders,
		cache:     cache,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *dashboardUseCase) Summary(ctx context.Context) (*dto.Summary, error) {
	var cached dto.Summary
	err := uc.cache.GetJSON(ctx, summaryCacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		uc.logger.Warn("dashboard cache read failed", zap.Error(err))
	}
	return uc.build(ctx)
}

func (uc *dashboardUseCase) Refresh(ctx context.Context) (*dto.Summary, error) {
	return uc.build(ctx)
}

func (uc *dashboardUseCase) build(ctx context.Context) (*dto.Summary, error) {
	var (
		snapshots []model.StockSnapshot
		alerts    []model.Alert
		orders    []model.PurchaseOrder
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshots, err = uc.snapshots.ListSnapshots(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		alerts, err = uc.alerts.ListOpen(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = uc.orders.ListOpen(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := Aggregate(snapshots, alerts, orders)
	summary.GeneratedAt = uc.now().UTC()

	if err := uc.cache.SetJSON(ctx, summaryCacheKey, summary, summaryCacheTTL); err != nil {
		uc.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return summary, nil
}

// Aggregate folds already-evaluated snapshots, open alerts and open orders
// into a summary.
func Aggregate(snapshots []model.StockSnapshot, alerts []model.Alert, orders []model.PurchaseOrder) *dto.Summary {
	s := &dto.Summary{
		TotalDrugs: len(snapshots),
		ByStatus: map[reorder.StockStatus]int{
			reorder.StatusCritical: 0,
			reorder.StatusLow:      0,
			reorder.StatusNormal:   0,
			reorder.StatusGood:     0,
		},
		BySource:        map[reorder.Source]int{},
		TotalStockValue: decimal.Zero,
		TopCritical:     []dto.CriticalDrug{},
	}
	s.OpenOrders.Value = decimal.Zero

	for i := range snapshots {
		snap := &snapshots[i]
		eval := snap.Evaluation
		s.ByStatus[eval.Status]++
		s.BySource[eval.Source]++
		s.TotalStockValue = s.TotalStockValue.Add(snap.UnitCost.Mul(decimal.NewFromInt(int64(snap.CurrentStock))))

		if eval.Status == reorder.StatusCritical {
			s.TopCritical = append(s.TopCritical, dto.CriticalDrug{
				DrugID:         snap.DrugID,
				DrugName:       snap.DrugName,
				CurrentStock:   snap.CurrentStock,
				EffectiveLevel: eval.EffectiveLevel,
				Source:         eval.Source,
				CoverRatio:     coverRatio(snap.CurrentStock, eval.EffectiveLevel),
			})
		}
	}

	sort.SliceStable(s.TopCritical, func(i, j int) bool {
		return s.TopCritical[i].CoverRatio < s.TopCritical[j].CoverRatio
	})
	if len(s.TopCritical) > topCriticalMax {
		s.TopCritical = s.TopCritical[:topCriticalMax]
	}

	for _, a := range alerts {
		s.OpenAlerts.Total++
		switch a.Severity {
		case model.SeverityCritical:
			s.OpenAlerts.Critical++
		case model.SeverityWarning:
			s.OpenAlerts.Warning++
		}
		if a.Status == model.AlertStatusAcknowledged {
			s.OpenAlerts.Acknowledged++
		}
	}

	for _, po := range orders {
		switch po.Status {
		case model.POStatusDraft:
			s.OpenOrders.Draft++
		case model.POStatusSubmitted:
			s.OpenOrders.Submitted++
		}
		s.OpenOrders.Value = s.OpenOrders.Value.Add(po.TotalCost)
	}
	return s
}

func coverRatio(stock, level int) float64 {
	if level <= 0 {
		return 0
	}
	return float64(stock) / float64(level)
}
