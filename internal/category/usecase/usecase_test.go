package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/category/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	cats      map[string]*model.Category
	order     []string
	drugCount map[string]int
	deleted   []string
}

func newFakeRepo(cats ...model.Category) *fakeRepo {
	r := &fakeRepo{cats: map[string]*model.Category{}, drugCount: map[string]int{}}
	for i := range cats {
		c := cats[i]
		r.cats[c.ID] = &c
		r.order = append(r.order, c.ID)
	}
	return r
}

func (f *fakeRepo) Create(_ context.Context, c *model.Category) error {
	cp := *c
	f.cats[c.ID] = &cp
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*model.Category, error) {
	c, ok := f.cats[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) FindAll(_ context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	var out []model.Category
	for _, id := range f.order {
		c := f.cats[id]
		if filters.IsActive != nil && c.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(_ context.Context, c *model.Category) error {
	cp := *c
	f.cats[c.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.cats, id)
	return nil
}

func (f *fakeRepo) CountDrugs(_ context.Context, id string) (int, error) {
	return f.drugCount[id], nil
}

func ptr(s string) *string { return &s }

func cat(id string, parent *string) model.Category {
	return model.Category{BaseModel: model.BaseModel{ID: id}, ParentID: parent, Name: id, IsActive: true}
}

func TestCreateCategory(t *testing.T) {
	repo := newFakeRepo(cat("anti-infectives", nil))
	uc := NewCategoryUseCase(repo, logger.NewNopLogger())

	c, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{
		ParentID: ptr("anti-infectives"),
		Name:     "Antibiotics",
	})
	require.NoError(t, err)
	assert.Equal(t, "anti-infectives", *c.ParentID)
	assert.Nil(t, c.Description)
	assert.True(t, c.IsActive)

	c, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{ParentID: ptr(""), Name: "Analgesics"})
	require.NoError(t, err)
	assert.Nil(t, c.ParentID, "empty parent means root")

	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{ParentID: ptr("ghost"), Name: "X"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUpdateCategory_RejectsCycles(t *testing.T) {
	repo := newFakeRepo(
		cat("a", nil),
		cat("b", ptr("a")),
		cat("c", ptr("b")),
	)
	uc := NewCategoryUseCase(repo, logger.NewNopLogger())

	_, err := uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: "a", ParentID: ptr("c"), Name: "a", IsActive: true})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: "b", ParentID: ptr("b"), Name: "b", IsActive: true})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	updated, err := uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: "c", ParentID: ptr("a"), Name: "c2", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "a", *updated.ParentID)
	assert.Equal(t, "c2", repo.cats["c"].Name)

	_, err = uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: "zz", Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteCategory_BlockedByDrugs(t *testing.T) {
	repo := newFakeRepo(cat("a", nil), cat("b", nil))
	repo.drugCount["a"] = 2
	uc := NewCategoryUseCase(repo, logger.NewNopLogger())

	assert.ErrorIs(t, uc.DeleteCategory(context.Background(), "a"), apperr.ErrConflict)
	require.NoError(t, uc.DeleteCategory(context.Background(), "b"))
	assert.Equal(t, []string{"b"}, repo.deleted)
	assert.ErrorIs(t, uc.DeleteCategory(context.Background(), "b"), apperr.ErrNotFound)
}

func TestCategoryTree(t *testing.T) {
	inactive := cat("hidden", nil)
	inactive.IsActive = false
	repo := newFakeRepo(
		cat("cardio", nil),
		cat("statins", ptr("cardio")),
		cat("beta-blockers", ptr("cardio")),
		cat("orphan", ptr("hidden")),
		inactive,
		cat("analgesics", nil),
		cat("opioids", ptr("analgesics")),
	)
	uc := NewCategoryUseCase(repo, logger.NewNopLogger())

	tree, err := uc.CategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 3)

	assert.Equal(t, "cardio", tree[0].ID)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "statins", tree[0].Children[0].ID)
	assert.Equal(t, "orphan", tree[1].ID, "children of inactive parents become roots")
	assert.Equal(t, "analgesics", tree[2].ID)
	assert.Len(t, tree[2].Children, 1)
}
