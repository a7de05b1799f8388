package handler

import (
	"github.com/fekuna/pharmastock-service/internal/alert"
	"github.com/fekuna/pharmastock-service/internal/alert/dto"
	"github.com/fekuna/pharmastock-service/internal/auth"
	"github.com/fekuna/pharmastock-service/internal/pkg/ginx"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AlertHandler struct {
	uc     alert.UseCase
	logger logger.ZapLogger
}

func NewAlertHandler(uc alert.UseCase, log logger.ZapLogger) *AlertHandler {
	return &AlertHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AlertHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/alerts")
	a.GET("", h.ListAlerts)
	a.POST("/evaluate", h.Evaluate)
	a.POST("/:id/acknowledge", h.Acknowledge)
	a.POST("/:id/resolve", h.Resolve)
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	page, pageSize := ginx.Pagination(c)
	filters := &dto.AlertFilters{
		Status:   c.Query("status"),
		Severity: c.Query("severity"),
		DrugID:   c.Query("drug_id"),
		Page:     page,
		PageSize: pageSize,
	}

	alerts, total, err := h.uc.ListAlerts(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list alerts", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Paged(c, alerts, total, page, pageSize)
}

func (h *AlertHandler) Evaluate(c *gin.Context) {
	res, err := h.uc.EvaluateAlerts(c.Request.Context())
	if err != nil {
		h.logger.Error("alert evaluation failed", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, res)
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	a, err := h.uc.AcknowledgeAlert(c.Request.Context(), c.Param("id"), auth.GetUserID(c.Request.Context()))
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, a)
}

func (h *AlertHandler) Resolve(c *gin.Context) {
	a, err := h.uc.ResolveAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, a)
}
