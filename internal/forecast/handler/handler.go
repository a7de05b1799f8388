package handler

import (
	"strconv"

	"github.com/fekuna/pharmastock-service/internal/forecast"
	"github.com/fekuna/pharmastock-service/internal/pkg/ginx"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ForecastHandler struct {
	uc     forecast.UseCase
	logger logger.ZapLogger
}

func NewForecastHandler(uc forecast.UseCase, log logger.ZapLogger) *ForecastHandler {
	return &ForecastHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ForecastHandler) Register(rg *gin.RouterGroup) {
	f := rg.Group("/forecasts")
	f.GET("/health", h.Health)
	f.GET("/models", h.ListModels)
	f.GET("", h.ForecastAll)
	f.GET("/:drugId", h.ForecastDrug)
	f.GET("/:drugId/calculations", h.ListCalculations)
}

type forecastQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=90"`
}

func (h *ForecastHandler) Health(c *gin.Context) {
	res, err := h.uc.Health(c.Request.Context())
	if err != nil {
		h.logger.Warn("forecast service unhealthy", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, res)
}

func (h *ForecastHandler) ListModels(c *gin.Context) {
	models, err := h.uc.ListModels(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list forecast models", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, models)
}

func (h *ForecastHandler) ForecastDrug(c *gin.Context) {
	var q forecastQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	res, err := h.uc.ForecastDrug(c.Request.Context(), c.Param("drugId"), q.Days)
	if err != nil {
		h.logger.Warn("forecast failed", zap.String("drug_id", c.Param("drugId")), zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, res)
}

func (h *ForecastHandler) ForecastAll(c *gin.Context) {
	var q forecastQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	res, err := h.uc.ForecastAll(c.Request.Context(), q.Days)
	if err != nil {
		h.logger.Error("forecast all failed", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, res)
}

func (h *ForecastHandler) ListCalculations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	rows, err := h.uc.ListCalculations(c.Request.Context(), c.Param("drugId"), limit)
	if err != nil {
		h.logger.Error("failed to list reorder calculations", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, rows)
}
