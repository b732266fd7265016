package order

import (
	"strconv"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/middleware"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler 处理订单相关的HTTP请求
type OrderHandler struct {
	orderService service.OrderServiceInterface
}

func NewOrderHandler(orderService service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{orderService}
}

// PlaceOrder 创建订单
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID := c.GetInt("user_id")

	var orderData struct {
		Items           []service.OrderItemInput `json:"items" binding:"required,min=1,dive"`
		ShippingAddress model.OrderAddress       `json:"shipping_address" binding:"required"`
		PaymentMethod   string                   `json:"payment_method" binding:"required,oneof=cod card mobile_banking"`
	}
	if err := c.ShouldBindJSON(&orderData); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	order, err := h.orderService.PlaceOrder(userID, orderData.Items,
		orderData.ShippingAddress, orderData.PaymentMethod)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleCreated(c, gin.H{"order": order}, "Order placed successfully")
}

// GetOrder 获取订单详情，非管理员只能查看本人订单
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid order ID"))
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrUnauthorized, "Not authorized to access this route"))
		return
	}

	order, err := h.orderService.GetOrderByID(id, user.ID, user.Role == model.RoleAdmin)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"order": order}, "")
}

// ListMyOrders 列出当前用户的订单
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID := c.GetInt("user_id")
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	orders, err := h.orderService.ListUserOrders(userID, page, pageSize)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"orders": orders}, "")
}

// ListOrders 管理员按状态分页列出全部订单
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)
	status := c.Query("status")

	orders, total, err := h.orderService.ListOrders(page, pageSize, status)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{
		"orders":    orders,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}, "")
}

// UpdateOrderStatus 管理员更新订单状态
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid order ID"))
		return
	}

	var statusData struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&statusData); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	order, err := h.orderService.UpdateOrderStatus(id, statusData.Status)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"order": order}, "Order status updated")
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
