package handler

import (
	"strconv"

	"github.com/fekuna/pharmastock-service/internal/category"
	"github.com/fekuna/pharmastock-service/internal/category/dto"
	"github.com/fekuna/pharmastock-service/internal/pkg/ginx"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/categories")
	g.GET("", h.ListCategories)
	g.GET("/tree", h.CategoryTree)
	g.POST("", h.CreateCategory)
	g.GET("/:id", h.GetCategory)
	g.PUT("/:id", h.UpdateCategory)
	g.DELETE("/:id", h.DeleteCategory)
}

type categoryRequest struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=500"`
	SortOrder   int     `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	cat, err := h.uc.CreateCategory(c.Request.Context(), &dto.CreateCategoryInput{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		h.logger.Error("failed to create category", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Created(c, cat)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	cat, err := h.uc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, cat)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	page, pageSize := ginx.Pagination(c)
	filters := &dto.CategoryFilters{Page: page, PageSize: pageSize}

	// parent_id= (present but empty) selects roots
	if v, ok := c.GetQuery("parent_id"); ok {
		filters.ParentID = &v
	}
	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			ginx.BadRequest(c, "is_active must be a boolean")
			return
		}
		filters.IsActive = &active
	}

	cats, total, err := h.uc.ListCategories(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Paged(c, cats, total, page, pageSize)
}

func (h *CategoryHandler) CategoryTree(c *gin.Context) {
	tree, err := h.uc.CategoryTree(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to build category tree", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, tree)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	cat, err := h.uc.UpdateCategory(c.Request.Context(), &dto.UpdateCategoryInput{
		ID:          c.Param("id"),
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    active,
	})
	if err != nil {
		h.logger.Error("failed to update category", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, cat)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.uc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("failed to delete category", zap.Error(err))
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, gin.H{"deleted": true})
}
