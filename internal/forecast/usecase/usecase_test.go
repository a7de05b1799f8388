package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/forecast/dto"
	invdto "github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/cache"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictor struct {
	mu       sync.Mutex
	calls    int
	demand   map[int]float64 // per model, per day
	failures map[int]error
	remoteLv int
}

func (f *fakePredictor) Health(context.Context) (*dto.HealthResponse, error) {
	return &dto.HealthResponse{Status: "healthy", ModelsLoaded: len(f.demand)}, nil
}

func (f *fakePredictor) ListModels(context.Context) ([]dto.ModelInfo, error) {
	return []dto.ModelInfo{{DrugID: 1, ModelLoaded: true}}, nil
}

func (f *fakePredictor) Forecast(_ context.Context, id, days int) (*dto.ForecastResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.failures[id]; err != nil {
		return nil, err
	}
	d, ok := f.demand[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &dto.ForecastResponse{DrugID: id, ReorderLevel: f.remoteLv, Forecasts: flat(days, d)}, nil
}

func (f *fakePredictor) ForecastAll(ctx context.Context, days int) (*dto.AllForecastsResponse, error) {
	out := &dto.AllForecastsResponse{}
	for _, id := range []int{1, 2, 99} {
		if _, ok := f.demand[id]; !ok {
			continue
		}
		r, _ := f.Forecast(ctx, id, days)
		out.Forecasts = append(out.Forecasts, *r)
	}
	return out, nil
}

func (f *fakePredictor) forecastCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSnapshots struct {
	items []model.StockSnapshot
}

func (f *fakeSnapshots) GetSnapshot(_ context.Context, id string) (*model.StockSnapshot, error) {
	for i := range f.items {
		if f.items[i].DrugID == id {
			s := f.items[i]
			return &s, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeSnapshots) ListSnapshots(context.Context, *invdto.SnapshotFilters) ([]model.StockSnapshot, error) {
	return append([]model.StockSnapshot(nil), f.items...), nil
}

type fakeRepo struct {
	mu    sync.Mutex
	calcs []model.ReorderCalculation
	err   error
}

func (f *fakeRepo) InsertCalculation(_ context.Context, c *model.ReorderCalculation) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calcs = append(f.calcs, *c)
	return nil
}

func (f *fakeRepo) ListCalculations(context.Context, string, int) ([]model.ReorderCalculation, error) {
	return f.calcs, nil
}

func (f *fakeRepo) byDrug() map[string]model.ReorderCalculation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]model.ReorderCalculation{}
	for _, c := range f.calcs {
		out[c.DrugID] = c
	}
	return out
}

func mlID(n int) *int { return &n }

func newTestUseCase(t *testing.T, p *fakePredictor, s *fakeSnapshots, repo *fakeRepo) (*forecastUseCase, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	uc := NewForecastUseCase(repo, p, s, cache.NewFromClient(client), reorder.Default(),
		Options{ForecastDays: 7, SafetyDays: 2, CacheTTL: time.Minute}, logger.NewNopLogger()).(*forecastUseCase)
	return uc, mr
}

func TestForecastDrug_OverridesRemoteLevel(t *testing.T) {
	p := &fakePredictor{demand: map[int]float64{1: 10}, remoteLv: 50}
	s := &fakeSnapshots{items: []model.StockSnapshot{{
		DrugID: "d1", MLDrugID: mlID(1), DrugName: "Amoxicillin", CurrentStock: 120,
		ReorderLevel: reorder.Int(100), CalculatedReorderLevel: reorder.Int(150),
	}}}
	uc, mr := newTestUseCase(t, p, s, &fakeRepo{})

	f, err := uc.ForecastDrug(context.Background(), "d1", 0)
	require.NoError(t, err)
	assert.Equal(t, 150, f.ReorderLevel)
	assert.Equal(t, reorder.SourceCalculated, f.ReorderLevelSource)
	assert.Equal(t, 50, f.RemoteReorderLevel)
	assert.Equal(t, reorder.StatusLow, f.Status)
	assert.Equal(t, dto.RecommendUrgent, f.Recommendation.Level, "120 <= 150 even though the remote level was 50")
	assert.InDelta(t, 70, f.TotalPredicted7Days, 1e-9)
	assert.Len(t, f.Forecasts, 7)
	assert.True(t, mr.Exists("forecast:1:7"))

	_, err = uc.ForecastDrug(context.Background(), "d1", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, p.forecastCalls(), "second request is served from cache")
}

func TestForecastDrug_Errors(t *testing.T) {
	p := &fakePredictor{demand: map[int]float64{}}
	s := &fakeSnapshots{items: []model.StockSnapshot{
		{DrugID: "local-only"},
		{DrugID: "unknown-model", MLDrugID: mlID(42)},
	}}
	uc, _ := newTestUseCase(t, p, s, &fakeRepo{})

	_, err := uc.ForecastDrug(context.Background(), "local-only", 7)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = uc.ForecastDrug(context.Background(), "missing", 7)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = uc.ForecastDrug(context.Background(), "unknown-model", 7)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = uc.ForecastDrug(context.Background(), "unknown-model", 365)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestForecastAll_JoinsLocalDrugs(t *testing.T) {
	p := &fakePredictor{demand: map[int]float64{1: 5, 2: 1, 99: 3}}
	s := &fakeSnapshots{items: []model.StockSnapshot{
		{DrugID: "d1", MLDrugID: mlID(1), CurrentStock: 0},
		{DrugID: "d2", MLDrugID: mlID(2), CurrentStock: 500, ReorderLevel: reorder.Int(100)},
		{DrugID: "d3", CurrentStock: 5},
	}}
	uc, _ := newTestUseCase(t, p, s, &fakeRepo{})

	out, err := uc.ForecastAll(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, out, 2, "model 99 has no local drug")

	assert.Equal(t, "d1", out[0].DrugID)
	assert.Equal(t, reorder.StatusCritical, out[0].Status)
	assert.Equal(t, reorder.SourceDefault, out[0].ReorderLevelSource)
	assert.Equal(t, "d2", out[1].DrugID)
	assert.Equal(t, reorder.StatusGood, out[1].Status)
	assert.Equal(t, dto.RecommendGood, out[1].Recommendation.Level)
}

func TestComputeIntelligentLevels(t *testing.T) {
	p := &fakePredictor{
		demand:   map[int]float64{1: 10, 2: 4},
		failures: map[int]error{3: errors.New("model crashed")},
	}
	s := &fakeSnapshots{items: []model.StockSnapshot{
		{DrugID: "d1", MLDrugID: mlID(1), LeadTimeDays: 3},
		{DrugID: "d2", MLDrugID: mlID(2), LeadTimeDays: 10},
		{DrugID: "d3", MLDrugID: mlID(3), LeadTimeDays: 3},
		{DrugID: "d4", LeadTimeDays: 3},
		{DrugID: "d5", MLDrugID: mlID(1), LeadTimeDays: 0},
	}}
	repo := &fakeRepo{}
	uc, _ := newTestUseCase(t, p, s, repo)
	uc.now = func() time.Time { return time.Date(2026, 10, 17, 15, 4, 0, 0, time.UTC) }

	res, err := uc.ComputeIntelligentLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Computed)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, []string{"d3"}, res.Failed)

	calcs := repo.byDrug()
	// 3 days lead at 10/day plus 2 safety days at 10/day
	assert.Equal(t, 50, calcs["d1"].IntelligentReorderLevel)
	assert.Equal(t, 7, calcs["d1"].ForecastDays)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), calcs["d1"].CalculationDate)
	// horizon stretched to the 10 day lead time: 40 + 8
	assert.Equal(t, 48, calcs["d2"].IntelligentReorderLevel)
	assert.Equal(t, 10, calcs["d2"].ForecastDays)
	assert.InDelta(t, 40, calcs["d2"].PredictedDemand, 1e-9)
}

func TestComputeIntelligentLevels_StoreFailureAborts(t *testing.T) {
	p := &fakePredictor{demand: map[int]float64{1: 10}}
	s := &fakeSnapshots{items: []model.StockSnapshot{{DrugID: "d1", MLDrugID: mlID(1), LeadTimeDays: 2}}}
	uc, _ := newTestUseCase(t, p, s, &fakeRepo{err: errors.New("db down")})

	_, err := uc.ComputeIntelligentLevels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
