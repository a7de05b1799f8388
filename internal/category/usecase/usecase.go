package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/category"
	"github.com/fekuna/pharmastock-service/internal/category/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	parentID := normalize(input.ParentID)
	if parentID != nil {
		if err := uc.requireParent(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ParentID:    parentID,
		Name:        input.Name,
		Description: normalize(&input.Description),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %s: %w", id, apperr.ErrNotFound)
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	if filters == nil {
		filters = &dto.CategoryFilters{}
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *categoryUseCase) CategoryTree(ctx context.Context) ([]model.Category, error) {
	active := true
	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{IsActive: &active})
	if err != nil {
		return nil, err
	}
	return buildTree(all), nil
}

// buildTree nests categories under their parents, keeping repository order.
// Categories whose parent is missing or inactive are promoted to roots.
func buildTree(flat []model.Category) []model.Category {
	byID := make(map[string]int, len(flat))
	for i, c := range flat {
		byID[c.ID] = i
	}

	children := map[string][]int{}
	var roots []int
	for i, c := range flat {
		if c.ParentID != nil {
			if _, ok := byID[*c.ParentID]; ok && *c.ParentID != c.ID {
				children[*c.ParentID] = append(children[*c.ParentID], i)
				continue
			}
		}
		roots = append(roots, i)
	}

	var build func(i int, seen map[string]bool) model.Category
	build = func(i int, seen map[string]bool) model.Category {
		node := flat[i]
		seen[node.ID] = true
		node.Children = nil
		for _, ci := range children[node.ID] {
			if seen[flat[ci].ID] {
				continue
			}
			node.Children = append(node.Children, build(ci, seen))
		}
		return node
	}

	out := make([]model.Category, 0, len(roots))
	seen := map[string]bool{}
	for _, i := range roots {
		out = append(out, build(i, seen))
	}
	return out
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}

	cat, err := uc.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	parentID := normalize(input.ParentID)
	if parentID != nil {
		if err := uc.checkNoCycle(ctx, cat.ID, *parentID); err != nil {
			return nil, err
		}
	}

	cat.Name = input.Name
	cat.Description = normalize(&input.Description)
	cat.SortOrder = input.SortOrder
	cat.IsActive = input.IsActive
	cat.ParentID = parentID
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	if _, err := uc.GetCategory(ctx, id); err != nil {
		return err
	}

	n, err := uc.repo.CountDrugs(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category still has %d active drugs", apperr.ErrConflict, n)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("category deleted", zap.String("category_id", id))
	return nil
}

func (uc *categoryUseCase) requireParent(ctx context.Context, parentID string) error {
	parent, err := uc.repo.FindByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("%w: parent category %s does not exist", apperr.ErrInvalidInput, parentID)
	}
	return nil
}

// checkNoCycle walks up from the new parent and fails if it reaches id.
func (uc *categoryUseCase) checkNoCycle(ctx context.Context, id, parentID string) error {
	seen := map[string]bool{}
	for cur := parentID; cur != ""; {
		if cur == id {
			return fmt.Errorf("%w: category cannot be its own ancestor", apperr.ErrInvalidInput)
		}
		if seen[cur] {
			return nil
		}
		seen[cur] = true

		node, err := uc.repo.FindByID(ctx, cur)
		if err != nil {
			return err
		}
		if node == nil {
			return fmt.Errorf("%w: parent category %s does not exist", apperr.ErrInvalidInput, cur)
		}
		if node.ParentID == nil {
			return nil
		}
		cur = *node.ParentID
	}
	return nil
}

func normalize(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
