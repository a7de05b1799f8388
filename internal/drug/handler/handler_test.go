package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/pharmastock-service/internal/apperr"
	"github.com/fekuna/pharmastock-service/internal/drug/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	created *dto.CreateDrugInput
	level   *int
	filters *dto.DrugFilters
}

func (s *stubUseCase) CreateDrug(_ context.Context, in *dto.CreateDrugInput) (*model.Drug, error) {
	s.created = in
	return &model.Drug{BaseModel: model.BaseModel{ID: "d1"}, Name: in.Name, Unit: in.Unit}, nil
}

func (s *stubUseCase) GetDrug(_ context.Context, id string) (*model.Drug, error) {
	if id == "missing" {
		return nil, apperr.ErrNotFound
	}
	return &model.Drug{BaseModel: model.BaseModel{ID: id}}, nil
}

func (s *stubUseCase) ListDrugs(_ context.Context, f *dto.DrugFilters) ([]model.Drug, int, error) {
	s.filters = f
	return []model.Drug{{Name: "A"}}, 1, nil
}

func (s *stubUseCase) UpdateDrug(_ context.Context, in *dto.UpdateDrugInput) (*model.Drug, error) {
	return &model.Drug{BaseModel: model.BaseModel{ID: in.ID}, IsActive: in.IsActive}, nil
}

func (s *stubUseCase) DeleteDrug(context.Context, string) error { return nil }

func (s *stubUseCase) SetManualReorderLevel(_ context.Context, id string, level *int) (*model.Drug, error) {
	s.level = level
	return &model.Drug{BaseModel: model.BaseModel{ID: id}, ReorderLevel: level}, nil
}

func newRouter(uc *stubUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewDrugHandler(uc, logger.NewNopLogger()).Register(r.Group("/api/v1"))
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateDrug(t *testing.T) {
	uc := &stubUseCase{}
	r := newRouter(uc)

	w := do(r, http.MethodPost, "/api/v1/drugs", `{"name":"Amoxicillin 500mg","unit":"capsule","unit_cost":"0.35","lead_time_days":5}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "0.35", uc.created.UnitCost.String())
	assert.Nil(t, uc.created.ReorderLevel)

	w = do(r, http.MethodPost, "/api/v1/drugs", `{"unit":"capsule"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/drugs", `{"name":"X","unit":"tablet","unit_cost":"-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDrug_MapsNotFound(t *testing.T) {
	w := do(newRouter(&stubUseCase{}), http.MethodGet, "/api/v1/drugs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListDrugs_ParsesQuery(t *testing.T) {
	uc := &stubUseCase{}
	w := do(newRouter(uc), http.MethodGet, "/api/v1/drugs?q=amox&is_active=false&page=2&page_size=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "amox", uc.filters.SearchQuery)
	require.NotNil(t, uc.filters.IsActive)
	assert.False(t, *uc.filters.IsActive)

	var resp struct {
		Data struct {
			Total    int `json:"total"`
			Page     int `json:"page"`
			PageSize int `json:"page_size"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Page)
	assert.Equal(t, 10, resp.Data.PageSize)

	w = do(newRouter(uc), http.MethodGet, "/api/v1/drugs?is_active=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetReorderLevel(t *testing.T) {
	uc := &stubUseCase{}
	r := newRouter(uc)

	w := do(r, http.MethodPut, "/api/v1/drugs/d1/reorder-level", `{"reorder_level":250}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.level)
	assert.Equal(t, 250, *uc.level)

	w = do(r, http.MethodPut, "/api/v1/drugs/d1/reorder-level", `{"reorder_level":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, uc.level)

	w = do(r, http.MethodPut, "/api/v1/drugs/d1/reorder-level", `{"reorder_level":-3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
