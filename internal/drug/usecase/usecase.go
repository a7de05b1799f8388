package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/drug"
	"github.com/fekuna/pharmastock-service/internal/drug/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/cache"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	IndexName      = "drugs"
	listCacheTTL   = 5 * time.Minute
	listCacheScope = "drugs:list:"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"category_id": { "type": "keyword" },
			"name": { "type": "text" },
			"generic_name": { "type": "text" },
			"unit": { "type": "keyword" },
			"is_active": { "type": "boolean" },
			"unit_cost": { "type": "scaled_float", "scaling_factor": 100 },
			"created_at": { "type": "date" }
		}
	}
}`

type drugUseCase struct {
	repo         drug.Repository
	cache        *cache.RedisClient
	es           *search.Client
	defaultLevel int
	logger       logger.ZapLogger
}

// NewDrugUseCase wires the catalog. es may be nil, in which case search goes
// straight to the database.
func NewDrugUseCase(repo drug.Repository, cache *cache.RedisClient, es *search.Client, defaultLevel int, log logger.ZapLogger) drug.UseCase {
	return &drugUseCase{
		repo:         repo,
		cache:        cache,
		es:           es,
		defaultLevel: defaultLevel,
		logger:       log,
	}
}

// EnsureIndex creates the search index when it does not exist yet.
func EnsureIndex(ctx context.Context, es *search.Client) error {
	return es.CreateIndex(ctx, IndexName, indexMapping)
}

func (uc *drugUseCase) CreateDrug(ctx context.Context, input *dto.CreateDrugInput) (*model.Drug, error) {
	if err := validateDrug(input.Name, input.Unit, input.ReorderQuantity, input.LeadTimeDays); err != nil {
		return nil, err
	}
	if input.ReorderLevel != nil && *input.ReorderLevel < 0 {
		return nil, fmt.Errorf("%w: reorder level must not be negative", apperr.ErrInvalidInput)
	}

	unique, err := uc.repo.IsNameUnique(ctx, input.Name, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, fmt.Errorf("%w: drug %q already exists", apperr.ErrConflict, input.Name)
	}

	level := input.ReorderLevel
	if level == nil {
		def := uc.defaultLevel
		level = &def
	}

	now := time.Now()
	d := &model.Drug{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CategoryID:      optional(input.CategoryID),
		MLDrugID:        input.MLDrugID,
		Name:            input.Name,
		GenericName:     optional(input.GenericName),
		Unit:            input.Unit,
		ReorderLevel:    level,
		ReorderQuantity: input.ReorderQuantity,
		LeadTimeDays:    input.LeadTimeDays,
		UnitCost:        input.UnitCost,
		IsActive:        true,
	}

	if err := uc.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	uc.invalidateListCache(ctx)
	go uc.syncToElastic(context.Background(), d)

	return d, nil
}

func (uc *drugUseCase) GetDrug(ctx context.Context, id string) (*model.Drug, error) {
	d, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("drug %s: %w", id, apperr.ErrNotFound)
	}
	return d, nil
}

type cachedList struct {
	Drugs []model.Drug `json:"drugs"`
	Count int          `json:"count"`
}

func (uc *drugUseCase) ListDrugs(ctx context.Context, filters *dto.DrugFilters) ([]model.Drug, int, error) {
	if filters == nil {
		filters = &dto.DrugFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}

	// 1. Cache
	cacheKey, err := generateCacheKey(filters)
	if err == nil {
		var hit cachedList
		if err := uc.cache.GetJSON(ctx, cacheKey, &hit); err == nil {
			return hit.Drugs, hit.Count, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			uc.logger.Warn("drug list cache read failed", zap.Error(err))
		}
	}

	// 2. Elasticsearch for free text
	if filters.SearchQuery != "" && uc.es != nil {
		drugs, total, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return drugs, total, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	// 3. Database
	drugs, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		if err := uc.cache.SetJSON(ctx, cacheKey, cachedList{Drugs: drugs, Count: count}, listCacheTTL); err != nil {
			uc.logger.Warn("drug list cache write failed", zap.Error(err))
		}
	}

	return drugs, count, nil
}

func (uc *drugUseCase) searchElastic(ctx context.Context, filters *dto.DrugFilters) ([]model.Drug, int, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":     filters.SearchQuery,
				"fields":    []string{"name^3", "generic_name"},
				"fuzziness": "AUTO",
			},
		},
	}
	filter := []map[string]interface{}{}
	if filters.CategoryID != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"category_id": filters.CategoryID}})
	}
	if filters.IsActive != nil {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"is_active": *filters.IsActive}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
	if filters.PageSize > 0 {
		q["from"] = (filters.Page - 1) * filters.PageSize
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, IndexName, q)
	if err != nil {
		return nil, 0, err
	}

	drugs := make([]model.Drug, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var d model.Drug
		if err := json.Unmarshal(hit.Source, &d); err != nil {
			uc.logger.Warn("skipping undecodable search hit", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		drugs = append(drugs, d)
	}
	return drugs, res.Hits.Total.Value, nil
}

func (uc *drugUseCase) UpdateDrug(ctx context.Context, input *dto.UpdateDrugInput) (*model.Drug, error) {
	if err := validateDrug(input.Name, input.Unit, input.ReorderQuantity, input.LeadTimeDays); err != nil {
		return nil, err
	}

	d, err := uc.GetDrug(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(d.Name, input.Name) {
		unique, err := uc.repo.IsNameUnique(ctx, input.Name, d.ID)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, fmt.Errorf("%w: drug %q already exists", apperr.ErrConflict, input.Name)
		}
	}

	d.CategoryID = optional(input.CategoryID)
	d.MLDrugID = input.MLDrugID
	d.Name = input.Name
	d.GenericName = optional(input.GenericName)
	d.Unit = input.Unit
	d.ReorderQuantity = input.ReorderQuantity
	d.LeadTimeDays = input.LeadTimeDays
	d.UnitCost = input.UnitCost
	d.IsActive = input.IsActive
	d.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	uc.invalidateListCache(ctx)
	go uc.syncToElastic(context.Background(), d)

	return d, nil
}

func (uc *drugUseCase) DeleteDrug(ctx context.Context, id string) error {
	d, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return nil // Already gone
	}

	if err := uc.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	uc.invalidateListCache(ctx)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), IndexName, id); err != nil {
				uc.logger.Error("failed to delete drug from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *drugUseCase) SetManualReorderLevel(ctx context.Context, id string, level *int) (*model.Drug, error) {
	if level != nil && *level < 0 {
		return nil, fmt.Errorf("%w: reorder level must not be negative", apperr.ErrInvalidInput)
	}

	d, err := uc.GetDrug(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.SetManualReorderLevel(ctx, id, level); err != nil {
		return nil, err
	}
	d.ReorderLevel = level
	d.UpdatedAt = time.Now()

	uc.logger.Info("manual reorder level updated", zap.String("drug_id", id), zap.Any("level", level))
	uc.invalidateListCache(ctx)
	go uc.syncToElastic(context.Background(), d)
	return d, nil
}

func (uc *drugUseCase) syncToElastic(ctx context.Context, d *model.Drug) {
	if uc.es == nil {
		return
	}
	if err := uc.es.Index(ctx, IndexName, d.ID, d); err != nil {
		uc.logger.Error("failed to index drug", zap.String("drug_id", d.ID), zap.Error(err))
	}
}

func (uc *drugUseCase) invalidateListCache(ctx context.Context) {
	if err := uc.cache.DeleteByPattern(ctx, listCacheScope+"*"); err != nil {
		uc.logger.Warn("failed to invalidate drug list cache", zap.Error(err))
	}
}

func generateCacheKey(filters *dto.DrugFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", listCacheScope, md5.Sum(data)), nil
}

func validateDrug(name, unit string, reorderQty, leadTime int) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	case strings.TrimSpace(unit) == "":
		return fmt.Errorf("%w: unit is required", apperr.ErrInvalidInput)
	case reorderQty < 0:
		return fmt.Errorf("%w: reorder quantity must not be negative", apperr.ErrInvalidInput)
	case leadTime < 0:
		return fmt.Errorf("%w: lead time must not be negative", apperr.ErrInvalidInput)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
