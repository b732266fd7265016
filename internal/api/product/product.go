package product

import (
	"strconv"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/middleware"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/service"
	"github.com/gin-gonic/gin"
)

// ProductHandler 处理商品相关的HTTP请求
type ProductHandler struct {
	productService service.ProductServiceInterface
}

func NewProductHandler(productService service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{productService}
}

type productRequest struct {
	Name          string   `json:"name" binding:"required"`
	Slug          string   `json:"slug" binding:"omitempty,slug"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price" binding:"omitempty,gt=0"`
	CategoryID    int      `json:"category_id" binding:"required"`
	Stock         int      `json:"stock" binding:"min=0"`
	Unit          string   `json:"unit"`
	Weight        *float64 `json:"weight"`
	SKU           string   `json:"sku"`
	Tags          []string `json:"tags"`
	IsFeatured    bool     `json:"is_featured"`
	IsActive      *bool    `json:"is_active"`
}

// ListProducts 按查询参数分页列出商品
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := model.ProductFilter{
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 12),
		Search:     c.Query("search"),
		ActiveOnly: true,
	}

	if v := c.Query("category_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.CategoryID = id
		}
	}
	if v := c.Query("min_price"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &price
		}
	}
	if v := c.Query("max_price"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &price
		}
	}
	if c.Query("featured") == "true" {
		filter.FeaturedOnly = true
	}

	products, total, err := h.productService.ListProducts(filter)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{
		"products":  products,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	}, "")
}

// GetProduct 获取商品详情，路径参数为数字ID或slug
func (h *ProductHandler) GetProduct(c *gin.Context) {
	param := c.Param("id")

	if id, err := strconv.Atoi(param); err == nil {
		product, err := h.productService.GetProductByID(id)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		apperrors.HandleSuccess(c, gin.H{"product": product}, "")
		return
	}

	product, err := h.productService.GetProductBySlug(param)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	apperrors.HandleSuccess(c, gin.H{"product": product}, "")
}

// CreateProduct 创建商品
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	product := requestToProduct(&req)
	// 创建者即卖家
	if current := middleware.CurrentUser(c); current != nil {
		vendorID := current.ID
		product.VendorID = &vendorID
	}
	if err := h.productService.CreateProduct(product); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleCreated(c, gin.H{"product": product}, "Product created successfully")
}

// UpdateProduct 更新商品
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid product ID"))
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	product := requestToProduct(&req)
	product.ID = id
	if err := h.productService.UpdateProduct(product); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"product": product}, "Product updated successfully")
}

// DeleteProduct 删除商品
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid product ID"))
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, nil, "Product deleted successfully")
}

// UploadImage 上传商品图片
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid product ID"))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Image file is required"))
		return
	}

	url, err := h.productService.UploadProductImage(id, file)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleCreated(c, gin.H{"url": url}, "Image uploaded successfully")
}

func requestToProduct(req *productRequest) *model.Product {
	product := &model.Product{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		CategoryID:    req.CategoryID,
		Stock:         req.Stock,
		Unit:          req.Unit,
		Weight:        req.Weight,
		SKU:           req.SKU,
		Tags:          req.Tags,
		IsFeatured:    req.IsFeatured,
		IsActive:      true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	return product
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
