package product

import (
	"strconv"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/service"
	"github.com/gin-gonic/gin"
)

// CategoryHandler 处理分类相关的HTTP请求
type CategoryHandler struct {
	categoryService service.CategoryServiceInterface
}

func NewCategoryHandler(categoryService service.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{categoryService}
}

type categoryRequest struct {
	Name             string `json:"name" binding:"required"`
	Slug             string `json:"slug" binding:"omitempty,slug"`
	Description      string `json:"description"`
	ImageURL         string `json:"image_url"`
	ParentCategoryID *int   `json:"parent_category_id"`
	IsActive         *bool  `json:"is_active"`
}

// ListCategories 列出分类，默认只返回启用的
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	activeOnly := c.Query("include_inactive") != "true"

	categories, err := h.categoryService.ListCategories(activeOnly)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"categories": categories}, "")
}

// GetCategory 获取分类详情，路径参数为数字ID或slug
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	param := c.Param("id")

	if id, err := strconv.Atoi(param); err == nil {
		category, err := h.categoryService.GetCategoryByID(id)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		apperrors.HandleSuccess(c, gin.H{"category": category}, "")
		return
	}

	category, err := h.categoryService.GetCategoryBySlug(param)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	apperrors.HandleSuccess(c, gin.H{"category": category}, "")
}

// CreateCategory 创建分类
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	category := requestToCategory(&req)
	if err := h.categoryService.CreateCategory(category); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleCreated(c, gin.H{"category": category}, "Category created successfully")
}

// UpdateCategory 更新分类
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid category ID"))
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	category := requestToCategory(&req)
	category.ID = id
	if err := h.categoryService.UpdateCategory(category); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"category": category}, "Category updated successfully")
}

// DeleteCategory 删除分类
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid category ID"))
		return
	}

	if err := h.categoryService.DeleteCategory(id); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, nil, "Category deleted successfully")
}

func requestToCategory(req *categoryRequest) *model.Category {
	category := &model.Category{
		Name:             req.Name,
		Slug:             req.Slug,
		Description:      req.Description,
		ImageURL:         req.ImageURL,
		ParentCategoryID: req.ParentCategoryID,
		IsActive:         true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	return category
}
