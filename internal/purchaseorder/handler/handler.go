package handler

import (
	"github.com/fekuna/pharmastock-service/internal/auth"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/ginx"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/purchaseorder"
	"github.com/fekuna/pharmastock-service/internal/purchaseorder/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PurchaseOrderHandler struct {
	uc     purchaseorder.UseCase
	logger logger.ZapLogger
}

func NewPurchaseOrderHandler(uc purchaseorder.UseCase, log logger.ZapLogger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *PurchaseOrderHandler) Register(rg *gin.RouterGroup) {
	po := rg.Group("/purchase-orders")
	po.GET("", h.List)
	po.POST("", h.Create)
	po.GET("/suggestions", h.Suggest)
	po.POST("/from-suggestions", h.CreateFromSuggestions)
	po.GET("/:id", h.Get)
	po.POST("/:id/submit", h.Submit)
	po.POST("/:id/receive", h.Receive)
	po.POST("/:id/cancel", h.Cancel)
}

type itemRequest struct {
	DrugID   string           `json:"drug_id" binding:"required"`
	Quantity int              `json:"quantity" binding:"required,min=1"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
}

type createRequest struct {
	Supplier string        `json:"supplier" binding:"required,max=200"`
	Notes    string        `json:"notes" binding:"max=1000"`
	Items    []itemRequest `json:"items" binding:"required,min=1,dive"`
}

type fromSuggestionsRequest struct {
	Supplier string `json:"supplier" binding:"required,max=200"`
}

func (h *PurchaseOrderHandler) List(c *gin.Context) {
	page, pageSize := ginx.Pagination(c)
	filters := &dto.PurchaseOrderFilters{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}

	orders, total, err := h.uc.ListPurchaseOrders(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list purchase orders", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Paged(c, orders, total, page, pageSize)
}

func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	input := &dto.CreatePurchaseOrderInput{
		Supplier:  req.Supplier,
		Notes:     req.Notes,
		CreatedBy: auth.GetUserID(c.Request.Context()),
	}
	for _, it := range req.Items {
		if it.UnitCost != nil && it.UnitCost.IsNegative() {
			ginx.BadRequest(c, "unit_cost must not be negative")
			return
		}
		input.Items = append(input.Items, dto.ItemInput{DrugID: it.DrugID, Quantity: it.Quantity, UnitCost: it.UnitCost})
	}

	po, err := h.uc.CreatePurchaseOrder(c.Request.Context(), input)
	if err != nil {
		h.logger.Warn("failed to create purchase order", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Created(c, po)
}

func (h *PurchaseOrderHandler) Suggest(c *gin.Context) {
	items, err := h.uc.SuggestOrders(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to build order suggestions", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	if items == nil {
		items = []dto.Suggestion{}
	}
	ginx.Success(c, items)
}

func (h *PurchaseOrderHandler) CreateFromSuggestions(c *gin.Context) {
	var req fromSuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	po, err := h.uc.CreateFromSuggestions(c.Request.Context(), req.Supplier, auth.GetUserID(c.Request.Context()))
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Created(c, po)
}

func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	po, err := h.uc.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, po)
}

func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.respond(c, func() (*model.PurchaseOrder, error) {
		return h.uc.Submit(c.Request.Context(), c.Param("id"))
	})
}

func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	h.respond(c, func() (*model.PurchaseOrder, error) {
		return h.uc.Receive(c.Request.Context(), c.Param("id"), auth.GetUserID(c.Request.Context()))
	})
}

func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	h.respond(c, func() (*model.PurchaseOrder, error) {
		return h.uc.Cancel(c.Request.Context(), c.Param("id"))
	})
}

func (h *PurchaseOrderHandler) respond(c *gin.Context, fn func() (*model.PurchaseOrder, error)) {
	po, err := fn()
	if err != nil {
		h.logger.Warn("purchase order transition failed", zap.String("id", c.Param("id")), zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, po)
}
