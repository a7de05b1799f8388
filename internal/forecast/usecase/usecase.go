package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/forecast"
	"github.com/fekuna/pharmastock-service/internal/forecast/dto"
	invdto "github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/cache"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxForecastDays = 90

// Predictor is satisfied by mlclient.Client.
type Predictor interface {
	Health(ctx context.Context) (*dto.HealthResponse, error)
	ListModels(ctx context.Context) ([]dto.ModelInfo, error)
	Forecast(ctx context.Context, mlDrugID, days int) (*dto.ForecastResponse, error)
	ForecastAll(ctx context.Context, days int) (*dto.AllForecastsResponse, error)
}

// SnapshotProvider is satisfied by inventory.UseCase.
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, drugID string) (*model.StockSnapshot, error)
	ListSnapshots(ctx context.Context, filters *invdto.SnapshotFilters) ([]model.StockSnapshot, error)
}

type Options struct {
	ForecastDays int
	SafetyDays   int
	CacheTTL     time.Duration
	// Concurrency bounds parallel forecast calls in ComputeIntelligentLevels.
	Concurrency int
}

type forecastUseCase struct {
	repo      forecast.Repository
	predictor Predictor
	snapshots SnapshotProvider
	cache     *cache.RedisClient
	resolver  reorder.Resolver
	opts      Options
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewForecastUseCase(
	repo forecast.Repository,
	predictor Predictor,
	snapshots SnapshotProvider,
	cache *cache.RedisClient,
	resolver reorder.Resolver,
	opts Options,
	log logger.ZapLogger,
) forecast.UseCase {
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = 7
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &forecastUseCase{
		repo:      repo,
		predictor: predictor,
		snapshots: snapshots,
		cache:     cache,
		resolver:  resolver,
		opts:      opts,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *forecastUseCase) Health(ctx context.Context) (*dto.HealthResponse, error) {
	return uc.predictor.Health(ctx)
}

func (uc *forecastUseCase) ListModels(ctx context.Context) ([]dto.ModelInfo, error) {
	return uc.predictor.ListModels(ctx)
}

func (uc *forecastUseCase) ListCalculations(ctx context.Context, drugID string, limit int) ([]model.ReorderCalculation, error) {
	return uc.repo.ListCalculations(ctx, drugID, limit)
}

func (uc *forecastUseCase) ForecastDrug(ctx context.Context, drugID string, days int) (*dto.EnrichedForecast, error) {
	days, err := uc.horizon(days)
	if err != nil {
		return nil, err
	}

	s, err := uc.snapshots.GetSnapshot(ctx, drugID)
	if err != nil {
		return nil, err
	}
	if s.MLDrugID == nil {
		return nil, fmt.Errorf("%w: drug %s has no forecasting model", apperr.ErrInvalidInput, drugID)
	}

	remote, err := uc.cachedForecast(ctx, *s.MLDrugID, days)
	if err != nil {
		return nil, err
	}

	out := uc.enrich(s, remote)
	return &out, nil
}

func (uc *forecastUseCase) ForecastAll(ctx context.Context, days int) ([]dto.EnrichedForecast, error) {
	days, err := uc.horizon(days)
	if err != nil {
		return nil, err
	}

	var (
		remote    *dto.AllForecastsResponse
		snapshots []model.StockSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		key := fmt.Sprintf("forecast:all:%d", days)
		var cached dto.AllForecastsResponse
		if err := uc.cache.GetJSON(gctx, key, &cached); err == nil {
			remote = &cached
			return nil
		}
		res, err := uc.predictor.ForecastAll(gctx, days)
		if err != nil {
			return err
		}
		uc.storeCache(gctx, key, res)
		remote = res
		return nil
	})
	g.Go(func() error {
		var err error
		snapshots, err = uc.snapshots.ListSnapshots(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byModel := make(map[int]*model.StockSnapshot, len(snapshots))
	for i := range snapshots {
		if id := snapshots[i].MLDrugID; id != nil {
			byModel[*id] = &snapshots[i]
		}
	}

	out := make([]dto.EnrichedForecast, 0, len(remote.Forecasts))
	for i := range remote.Forecasts {
		f := &remote.Forecasts[i]
		s, ok := byModel[f.DrugID]
		if !ok {
			uc.logger.Debug("forecast without local drug", zap.Int("ml_drug_id", f.DrugID))
			continue
		}
		out = append(out, uc.enrich(s, f))
	}
	return out, nil
}

// enrich replaces whatever level the forecasting service assumed with the
// locally resolved one and recomputes the recommendation against local stock.
func (uc *forecastUseCase) enrich(s *model.StockSnapshot, remote *dto.ForecastResponse) dto.EnrichedForecast {
	eval := uc.resolver.Evaluate(s.Candidates(), s.CurrentStock)
	return dto.EnrichedForecast{
		DrugID:              s.DrugID,
		MLDrugID:            remote.DrugID,
		DrugName:            s.DrugName,
		Unit:                s.Unit,
		CurrentStock:        s.CurrentStock,
		ReorderLevel:        eval.EffectiveLevel,
		ReorderLevelSource:  eval.Source,
		RemoteReorderLevel:  remote.ReorderLevel,
		Status:              eval.Status,
		Forecasts:           remote.Forecasts,
		TotalPredicted7Days: totalFirstDays(remote.Forecasts, 7),
		Recommendation:      Recommend(s.CurrentStock, eval.EffectiveLevel, remote.Forecasts),
		GeneratedAt:         uc.now(),
	}
}

func (uc *forecastUseCase) cachedForecast(ctx context.Context, mlDrugID, days int) (*dto.ForecastResponse, error) {
	key := fmt.Sprintf("forecast:%d:%d", mlDrugID, days)

	var cached dto.ForecastResponse
	err := uc.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		uc.logger.Warn("forecast cache read failed", zap.String("key", key), zap.Error(err))
	}

	res, err := uc.predictor.Forecast(ctx, mlDrugID, days)
	if err != nil {
		return nil, err
	}
	uc.storeCache(ctx, key, res)
	return res, nil
}

func (uc *forecastUseCase) storeCache(ctx context.Context, key string, v interface{}) {
	if uc.opts.CacheTTL <= 0 {
		return
	}
	if err := uc.cache.SetJSON(ctx, key, v, uc.opts.CacheTTL); err != nil {
		uc.logger.Warn("forecast cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (uc *forecastUseCase) horizon(days int) (int, error) {
	if days <= 0 {
		return uc.opts.ForecastDays, nil
	}
	if days > maxForecastDays {
		return 0, fmt.Errorf("%w: days must be at most %d", apperr.ErrInvalidInput, maxForecastDays)
	}
	return days, nil
}

func (uc *forecastUseCase) ComputeIntelligentLevels(ctx context.Context) (*dto.IntelligentLevelResult, error) {
	snapshots, err := uc.snapshots.ListSnapshots(ctx, nil)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		result dto.IntelligentLevelResult
	)
	today := uc.now().UTC().Truncate(24 * time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Concurrency)

	for i := range snapshots {
		s := snapshots[i]
		if s.MLDrugID == nil || s.LeadTimeDays <= 0 {
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			days := uc.opts.ForecastDays
			if s.LeadTimeDays > days {
				days = s.LeadTimeDays
			}

			res, err := uc.predictor.Forecast(gctx, *s.MLDrugID, days)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				uc.logger.Warn("forecast failed, skipping drug",
					zap.String("drug_id", s.DrugID), zap.Int("ml_drug_id", *s.MLDrugID), zap.Error(err))
				mu.Lock()
				result.Failed = append(result.Failed, s.DrugID)
				mu.Unlock()
				return nil
			}

			predicted := make([]float64, len(res.Forecasts))
			var total float64
			for j, f := range res.Forecasts {
				predicted[j] = f.PredictedDemand
				total += f.PredictedDemand
			}

			level := reorder.IntelligentReorderLevel(predicted, s.LeadTimeDays, uc.opts.SafetyDays)
			if level == nil {
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				return nil
			}

			calc := &model.ReorderCalculation{
				ID:                      uuid.New().String(),
				DrugID:                  s.DrugID,
				CalculationDate:         today,
				IntelligentReorderLevel: *level,
				PredictedDemand:         round1(total),
				ForecastDays:            len(res.Forecasts),
				LeadTimeDays:            s.LeadTimeDays,
				CreatedAt:               uc.now(),
			}
			if err := uc.repo.InsertCalculation(gctx, calc); err != nil {
				return fmt.Errorf("store reorder calculation for %s: %w", s.DrugID, err)
			}

			mu.Lock()
			result.Computed++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &result, err
	}

	uc.logger.Info("intelligent reorder levels computed",
		zap.Int("computed", result.Computed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)),
	)
	return &result, nil
}
