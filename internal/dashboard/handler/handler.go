package handler

import (
	"github.com/fekuna/pharmastock-service/internal/dashboard"
	"github.com/fekuna/pharmastock-service/internal/pkg/ginx"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	uc     dashboard.UseCase
	logger logger.ZapLogger
}

func NewDashboardHandler(uc dashboard.UseCase, log logger.ZapLogger) *DashboardHandler {
	return &DashboardHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *DashboardHandler) Register(rg *gin.RouterGroup) {
	d := rg.Group("/dashboard")
	d.GET("/summary", h.Summary)
}

// Summary serves the cached summary unless refresh=true is given.
func (h *DashboardHandler) Summary(c *gin.Context) {
	fetch := h.uc.Summary
	if c.Query("refresh") == "true" {
		fetch = h.uc.Refresh
	}

	s, err := fetch(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard summary", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, s)
}
