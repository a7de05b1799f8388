package handler

import (
	"time"

	"github.com/fekuna/pharmastock-service/internal/auth"
	"github.com/fekuna/pharmastock-service/internal/inventory"
	"github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/ginx"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	inv.GET("", h.ListSnapshots)
	inv.GET("/low-stock", h.ListLowStock)
	inv.GET("/movements", h.ListMovements)
	inv.GET("/:drugId", h.GetSnapshot)
	inv.POST("/:drugId/adjust", h.AdjustInventory)
}

func (h *InventoryHandler) ListSnapshots(c *gin.Context) {
	filters := &dto.SnapshotFilters{
		CategoryID: c.Query("category_id"),
		Status:     reorder.StockStatus(c.Query("status")),
	}
	if filters.Status != "" && !filters.Status.Valid() {
		ginx.BadRequest(c, "unknown status "+string(filters.Status))
		return
	}

	items, err := h.uc.ListSnapshots(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list stock snapshots", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, items)
}

func (h *InventoryHandler) GetSnapshot(c *gin.Context) {
	s, err := h.uc.GetSnapshot(c.Request.Context(), c.Param("drugId"))
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, s)
}

func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	page, pageSize := ginx.Pagination(c)
	items, total, err := h.uc.ListLowStock(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list low stock", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Paged(c, items, total, page, pageSize)
}

type adjustRequest struct {
	QuantityChange int    `json:"quantity_change" binding:"required"`
	Reason         string `json:"reason" binding:"required,max=500"`
	ReferenceID    string `json:"reference_id"`
}

func (h *InventoryHandler) AdjustInventory(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	input := &dto.AdjustInventoryInput{
		DrugID:         c.Param("drugId"),
		QuantityChange: req.QuantityChange,
		MovementType:   model.MovementAdjustment,
		Reason:         req.Reason,
		ReferenceID:    req.ReferenceID,
		ReferenceType:  "manual",
		UserID:         auth.GetUserID(c.Request.Context()),
	}

	inv, err := h.uc.AdjustInventory(c.Request.Context(), input)
	if err != nil {
		h.logger.Warn("failed to adjust inventory", zap.String("drug_id", input.DrugID), zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, inv)
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, pageSize := ginx.Pagination(c)
	filters := &dto.MovementFilters{
		DrugID:       c.Query("drug_id"),
		MovementType: c.Query("movement_type"),
		Page:         page,
		PageSize:     pageSize,
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			ginx.BadRequest(c, "start_date must be YYYY-MM-DD")
			return
		}
		filters.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			ginx.BadRequest(c, "end_date must be YYYY-MM-DD")
			return
		}
		end := t.AddDate(0, 0, 1)
		filters.EndDate = &end
	}

	mvs, total, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list movements", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Paged(c, mvs, total, page, pageSize)
}
