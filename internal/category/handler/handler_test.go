package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/category/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	filters *dto.CategoryFilters
	update  *dto.UpdateCategoryInput
}

func (s *stubUseCase) CreateCategory(context.Context, *dto.CreateCategoryInput) (*model.Category, error) {
	return &model.Category{}, nil
}

func (s *stubUseCase) GetCategory(context.Context, string) (*model.Category, error) {
	return nil, apperr.ErrNotFound
}

func (s *stubUseCase) ListCategories(_ context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	s.filters = f
	return nil, 0, nil
}

func (s *stubUseCase) CategoryTree(context.Context) ([]model.Category, error) { return nil, nil }

func (s *stubUseCase) UpdateCategory(_ context.Context, in *dto.UpdateCategoryInput) (*model.Category, error) {
	s.update = in
	return &model.Category{}, nil
}

func (s *stubUseCase) DeleteCategory(context.Context, string) error {
	return apperr.ErrConflict
}

func serve(uc *stubUseCase, method, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewCategoryHandler(uc, logger.NewNopLogger()).Register(r.Group("/api/v1"))
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListCategories_ParentFilter(t *testing.T) {
	uc := &stubUseCase{}
	require.Equal(t, http.StatusOK, serve(uc, http.MethodGet, "/api/v1/categories", "").Code)
	assert.Nil(t, uc.filters.ParentID)

	require.Equal(t, http.StatusOK, serve(uc, http.MethodGet, "/api/v1/categories?parent_id=", "").Code)
	require.NotNil(t, uc.filters.ParentID)
	assert.Equal(t, "", *uc.filters.ParentID)

	require.Equal(t, http.StatusOK, serve(uc, http.MethodGet, "/api/v1/categories?is_active=false", "").Code)
	require.NotNil(t, uc.filters.IsActive)
	assert.False(t, *uc.filters.IsActive)

	assert.Equal(t, http.StatusBadRequest, serve(uc, http.MethodGet, "/api/v1/categories?is_active=maybe", "").Code)
}

func TestUpdateCategory_DefaultsActive(t *testing.T) {
	uc := &stubUseCase{}
	w := serve(uc, http.MethodPut, "/api/v1/categories/c1", `{"name":"Antibiotics"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", uc.update.ID)
	assert.True(t, uc.update.IsActive)
}

func TestErrorMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(&stubUseCase{}, http.MethodGet, "/api/v1/categories/c1", "").Code)
	assert.Equal(t, http.StatusConflict, serve(&stubUseCase{}, http.MethodDelete, "/api/v1/categories/c1", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&stubUseCase{}, http.MethodPost, "/api/v1/categories", `{}`).Code)
}
