package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/cache"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu         sync.Mutex
	stock      map[string]*model.Inventory
	snapshots  []model.StockSnapshot
	movements  []model.InventoryMovement
	usage      map[string][]model.DailyUsage
	calculated map[string]*int
	adjustErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stock:      map[string]*model.Inventory{},
		usage:      map[string][]model.DailyUsage{},
		calculated: map[string]*int{},
	}
}

func (f *fakeRepo) GetByDrug(_ context.Context, drugID string) (*model.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.stock[drugID]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeRepo) GetSnapshot(_ context.Context, drugID string) (*model.StockSnapshot, error) {
	for _, s := range f.snapshots {
		if s.DrugID == drugID {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListSnapshots(_ context.Context, _ *dto.SnapshotFilters) ([]model.StockSnapshot, error) {
	out := make([]model.StockSnapshot, len(f.snapshots))
	copy(out, f.snapshots)
	return out, nil
}

func (f *fakeRepo) ListMovements(_ context.Context, _ *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return f.movements, len(f.movements), nil
}

func (f *fakeRepo) DailyUsage(_ context.Context, drugID string, _ time.Time) ([]model.DailyUsage, error) {
	return f.usage[drugID], nil
}

func (f *fakeRepo) AdjustStockWithMovement(_ context.Context, inv *model.Inventory, m *model.InventoryMovement) error {
	if f.adjustErr != nil {
		return f.adjustErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *inv
	f.stock[inv.DrugID] = &cp
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeRepo) SetCalculatedReorderLevel(_ context.Context, drugID string, level *int) error {
	f.calculated[drugID] = level
	return nil
}

func newTestUseCase(t *testing.T, repo *fakeRepo) (*inventoryUseCase, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	uc := NewInventoryUseCase(repo, cache.NewFromClient(client), reorder.Default(),
		Options{UsageWindowDays: 7, SafetyDays: 2}, logger.NewNopLogger()).(*inventoryUseCase)
	return uc, mr
}

func snapshot(id string, stock int, c reorder.Candidates) model.StockSnapshot {
	return model.StockSnapshot{
		DrugID:                  id,
		DrugName:                "drug-" + id,
		CurrentStock:            stock,
		IntelligentReorderLevel: c.Intelligent,
		CalculatedReorderLevel:  c.Calculated,
		ReorderLevel:            c.Manual,
		LeadTimeDays:            3,
	}
}

func TestAdjustInventory_CreatesStockAndMovement(t *testing.T) {
	repo := newFakeRepo()
	uc, mr := newTestUseCase(t, repo)

	inv, err := uc.AdjustInventory(context.Background(), &dto.AdjustInventoryInput{
		DrugID:         "d1",
		QuantityChange: 40,
		Reason:         "initial count",
		UserID:         "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, 40, inv.Quantity)
	assert.NotNil(t, inv.LastCountedAt)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	assert.Equal(t, model.MovementAdjustment, m.MovementType)
	assert.Equal(t, 0, m.QuantityBefore)
	assert.Equal(t, 40, m.QuantityAfter)
	require.NotNil(t, m.CreatedBy)
	assert.Equal(t, "u1", *m.CreatedBy)
	assert.Nil(t, m.ReferenceID)

	assert.False(t, mr.Exists("lock:inventory:d1"), "lock must be released")
}

func TestAdjustInventory_RejectsNegativeResult(t *testing.T) {
	repo := newFakeRepo()
	repo.stock["d1"] = &model.Inventory{ID: "i1", DrugID: "d1", Quantity: 5}
	uc, _ := newTestUseCase(t, repo)

	_, err := uc.AdjustInventory(context.Background(), &dto.AdjustInventoryInput{
		DrugID:         "d1",
		QuantityChange: -6,
		MovementType:   model.MovementDispense,
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Empty(t, repo.movements)
	assert.Equal(t, 5, repo.stock["d1"].Quantity)
}

func TestAdjustInventory_InvalidInput(t *testing.T) {
	uc, _ := newTestUseCase(t, newFakeRepo())

	_, err := uc.AdjustInventory(context.Background(), &dto.AdjustInventoryInput{QuantityChange: 1})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = uc.AdjustInventory(context.Background(), &dto.AdjustInventoryInput{DrugID: "d1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestAdjustInventory_BusyWhenLocked(t *testing.T) {
	uc, mr := newTestUseCase(t, newFakeRepo())
	require.NoError(t, mr.Set("lock:inventory:d1", "someone-else"))

	_, err := uc.AdjustInventory(context.Background(), &dto.AdjustInventoryInput{DrugID: "d1", QuantityChange: 1})
	assert.ErrorIs(t, err, apperr.ErrBusy)
}

func TestAdjustInventory_RepoErrorPropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.adjustErr = errors.New("db down")
	uc, mr := newTestUseCase(t, repo)

	_, err := uc.AdjustInventory(context.Background(), &dto.AdjustInventoryInput{DrugID: "d1", QuantityChange: 3})
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists("lock:inventory:d1"))
}

func TestAdjustInventory_ConcurrentAdjustmentsSerialize(t *testing.T) {
	repo := newFakeRepo()
	repo.stock["d1"] = &model.Inventory{ID: "i1", DrugID: "d1", Quantity: 100}
	uc, _ := newTestUseCase(t, repo)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.AdjustInventory(context.Background(), &dto.AdjustInventoryInput{
				DrugID: "d1", QuantityChange: -10, MovementType: model.MovementDispense,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 70, repo.stock["d1"].Quantity)
	assert.Len(t, repo.movements, 3)
}

func TestGetSnapshot_Evaluates(t *testing.T) {
	repo := newFakeRepo()
	repo.snapshots = []model.StockSnapshot{
		snapshot("d1", 80, reorder.Candidates{Intelligent: reorder.Int(0), Calculated: reorder.Int(150), Manual: reorder.Int(500)}),
	}
	uc, _ := newTestUseCase(t, repo)

	s, err := uc.GetSnapshot(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, 150, s.Evaluation.EffectiveLevel)
	assert.Equal(t, reorder.SourceCalculated, s.Evaluation.Source)
	assert.Equal(t, reorder.StatusLow, s.Evaluation.Status)

	_, err = uc.GetSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListSnapshots_StatusFilter(t *testing.T) {
	repo := newFakeRepo()
	repo.snapshots = []model.StockSnapshot{
		snapshot("good", 250, reorder.Candidates{Manual: reorder.Int(100)}),
		snapshot("low", 80, reorder.Candidates{Manual: reorder.Int(100)}),
		snapshot("normal", 150, reorder.Candidates{}),
	}
	uc, _ := newTestUseCase(t, repo)

	items, err := uc.ListSnapshots(context.Background(), &dto.SnapshotFilters{Status: reorder.StatusLow})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "low", items[0].DrugID)

	items, err = uc.ListSnapshots(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, reorder.SourceDefault, items[2].Evaluation.Source)
	assert.Equal(t, reorder.StatusNormal, items[2].Evaluation.Status)
}

func TestListLowStock_OrdersBySeverityAndPaginates(t *testing.T) {
	repo := newFakeRepo()
	level := reorder.Candidates{Manual: reorder.Int(100)}
	repo.snapshots = []model.StockSnapshot{
		snapshot("low-90", 90, level),
		snapshot("good", 300, level),
		snapshot("crit-40", 40, level),
		snapshot("low-60", 60, level),
		snapshot("crit-0", 0, level),
		snapshot("normal", 150, level),
	}
	uc, _ := newTestUseCase(t, repo)

	items, total, err := uc.ListLowStock(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 3)
	assert.Equal(t, "crit-0", items[0].DrugID)
	assert.Equal(t, "crit-40", items[1].DrugID)
	assert.Equal(t, "low-60", items[2].DrugID)

	items, _, err = uc.ListLowStock(context.Background(), 2, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "low-90", items[0].DrugID)

	items, _, err = uc.ListLowStock(context.Background(), 5, 3)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRecalculateLevels(t *testing.T) {
	repo := newFakeRepo()
	repo.snapshots = []model.StockSnapshot{
		snapshot("busy", 10, reorder.Candidates{}),
		snapshot("idle", 10, reorder.Candidates{}),
	}
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	// 7 day window: 14 units over 2 days -> avg 2, peak 10
	repo.usage["busy"] = []model.DailyUsage{{Day: day, Quantity: 4}, {Day: day.AddDate(0, 0, 1), Quantity: 10}}
	uc, _ := newTestUseCase(t, repo)

	updated, err := uc.RecalculateLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	// lead 3, safety 2: 2*3 + 8*3 + 2*2 = 34
	require.NotNil(t, repo.calculated["busy"])
	assert.Equal(t, 34, *repo.calculated["busy"])
	_, touched := repo.calculated["idle"]
	assert.False(t, touched)
}

func TestRecalculateLevels_ClearsStaleLevelWithoutUsage(t *testing.T) {
	repo := newFakeRepo()
	repo.snapshots = []model.StockSnapshot{
		snapshot("stale", 120, reorder.Candidates{Calculated: reorder.Int(500), Manual: reorder.Int(100)}),
	}
	uc, _ := newTestUseCase(t, repo)

	updated, err := uc.RecalculateLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	level, touched := repo.calculated["stale"]
	require.True(t, touched)
	assert.Nil(t, level)
}

func TestGetDrugInventory_DefaultsToZero(t *testing.T) {
	uc, _ := newTestUseCase(t, newFakeRepo())

	inv, err := uc.GetDrugInventory(context.Background(), "d9")
	require.NoError(t, err)
	assert.Equal(t, "d9", inv.DrugID)
	assert.Equal(t, 0, inv.Quantity)
}
