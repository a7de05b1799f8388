package handler

import (
	"strconv"

	"github.com/fekuna/pharmastock-service/internal/drug"
	"github.com/fekuna/pharmastock-service/internal/drug/dto"
	"github.com/fekuna/pharmastock-service/internal/pkg/ginx"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DrugHandler struct {
	uc     drug.UseCase
	logger logger.ZapLogger
}

func NewDrugHandler(uc drug.UseCase, log logger.ZapLogger) *DrugHandler {
	return &DrugHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *DrugHandler) Register(rg *gin.RouterGroup) {
	d := rg.Group("/drugs")
	d.GET("", h.ListDrugs)
	d.POST("", h.CreateDrug)
	d.GET("/:id", h.GetDrug)
	d.PUT("/:id", h.UpdateDrug)
	d.DELETE("/:id", h.DeleteDrug)
	d.PUT("/:id/reorder-level", h.SetReorderLevel)
}

type drugRequest struct {
	CategoryID      string          `json:"category_id"`
	MLDrugID        *int            `json:"ml_drug_id" binding:"omitempty,gt=0"`
	Name            string          `json:"name" binding:"required,max=255"`
	GenericName     string          `json:"generic_name" binding:"max=255"`
	Unit            string          `json:"unit" binding:"required,max=50"`
	ReorderLevel    *int            `json:"reorder_level" binding:"omitempty,gte=0"`
	ReorderQuantity int             `json:"reorder_quantity" binding:"gte=0"`
	LeadTimeDays    int             `json:"lead_time_days" binding:"gte=0"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	IsActive        *bool           `json:"is_active"`
}

func (h *DrugHandler) CreateDrug(c *gin.Context) {
	var req drugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}
	if req.UnitCost.IsNegative() {
		ginx.BadRequest(c, "unit_cost must not be negative")
		return
	}

	d, err := h.uc.CreateDrug(c.Request.Context(), &dto.CreateDrugInput{
		CategoryID:      req.CategoryID,
		MLDrugID:        req.MLDrugID,
		Name:            req.Name,
		GenericName:     req.GenericName,
		Unit:            req.Unit,
		ReorderLevel:    req.ReorderLevel,
		ReorderQuantity: req.ReorderQuantity,
		LeadTimeDays:    req.LeadTimeDays,
		UnitCost:        req.UnitCost,
	})
	if err != nil {
		h.logger.Error("failed to create drug", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Created(c, d)
}

func (h *DrugHandler) GetDrug(c *gin.Context) {
	d, err := h.uc.GetDrug(c.Request.Context(), c.Param("id"))
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, d)
}

func (h *DrugHandler) ListDrugs(c *gin.Context) {
	page, pageSize := ginx.Pagination(c)
	filters := &dto.DrugFilters{
		CategoryID:  c.Query("category_id"),
		SearchQuery: c.Query("q"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Page:        page,
		PageSize:    pageSize,
	}
	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			ginx.BadRequest(c, "is_active must be a boolean")
			return
		}
		filters.IsActive = &active
	}

	drugs, total, err := h.uc.ListDrugs(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list drugs", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Paged(c, drugs, total, page, pageSize)
}

func (h *DrugHandler) UpdateDrug(c *gin.Context) {
	var req drugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}
	if req.UnitCost.IsNegative() {
		ginx.BadRequest(c, "unit_cost must not be negative")
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	d, err := h.uc.UpdateDrug(c.Request.Context(), &dto.UpdateDrugInput{
		ID:              c.Param("id"),
		CategoryID:      req.CategoryID,
		MLDrugID:        req.MLDrugID,
		Name:            req.Name,
		GenericName:     req.GenericName,
		Unit:            req.Unit,
		ReorderQuantity: req.ReorderQuantity,
		LeadTimeDays:    req.LeadTimeDays,
		UnitCost:        req.UnitCost,
		IsActive:        active,
	})
	if err != nil {
		h.logger.Error("failed to update drug", zap.String("id", c.Param("id")), zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, d)
}

func (h *DrugHandler) DeleteDrug(c *gin.Context) {
	if err := h.uc.DeleteDrug(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("failed to delete drug", zap.String("id", c.Param("id")), zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, gin.H{"deleted": true})
}

type reorderLevelRequest struct {
	// nil clears the manual level so the resolver falls through to the default.
	ReorderLevel *int `json:"reorder_level" binding:"omitempty,gte=0"`
}

func (h *DrugHandler) SetReorderLevel(c *gin.Context) {
	var req reorderLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	d, err := h.uc.SetManualReorderLevel(c.Request.Context(), c.Param("id"), req.ReorderLevel)
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, d)
}
