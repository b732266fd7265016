package service

import (
	"time"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/repository/interfaces"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"go.uber.org/zap"
)

// 运费与税率规则
const (
	freeShippingThreshold = 1000.0
	shippingFlatRate      = 60.0
	taxRate               = 0.05
)

// OrderItemInput 下单时客户端提交的单项
type OrderItemInput struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

// OrderServiceInterface 订单服务操作
type OrderServiceInterface interface {
	PlaceOrder(userID int, items []OrderItemInput, address model.OrderAddress, paymentMethod string) (*model.Order, error)
	GetOrderByID(id, userID int, isAdmin bool) (*model.Order, error)
	ListUserOrders(userID, page, pageSize int) ([]*model.Order, error)
	ListOrders(page, pageSize int, status string) ([]*model.Order, int, error)
	UpdateOrderStatus(id int, status string) (*model.Order, error)
}

// OrderService 订单服务
// 单价与总价全部以服务端当前价格为准，客户端提交的价格一律忽略
type OrderService struct {
	orderRepo    interfaces.OrderRepository
	productRepo  interfaces.ProductRepository
	userRepo     interfaces.UserRepository
	emailService EmailSenderInterface
}

func NewOrderService(orderRepo interfaces.OrderRepository, productRepo interfaces.ProductRepository,
	userRepo interfaces.UserRepository, emailService EmailSenderInterface) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// PlaceOrder 创建订单：快照当前价格、事务内扣库存、提交后发确认邮件
// 确认邮件失败只记日志，订单已落库不回滚
func (s *OrderService) PlaceOrder(userID int, items []OrderItemInput,
	address model.OrderAddress, paymentMethod string) (*model.Order, error) {
	if len(items) == 0 {
		return nil, apperrors.New(apperrors.ErrBadRequest, "Order must contain at least one item")
	}

	order := &model.Order{
		UserID:          userID,
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   model.PaymentPending,
		Status:          model.OrderPending,
	}

	for _, input := range items {
		product, err := s.productRepo.FindByID(input.ProductID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to find product", err)
		}
		if product == nil || !product.IsActive {
			return nil, apperrors.New(apperrors.ErrProductNotFound, "Product not found")
		}

		price := product.EffectivePrice()
		order.Items = append(order.Items, &model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  input.Quantity,
			Price:     price,
			Image:     product.MainImage(),
		})
		order.ItemsPrice += price * float64(input.Quantity)
	}

	order.TaxPrice = order.ItemsPrice * taxRate
	if order.ItemsPrice < freeShippingThreshold {
		order.ShippingPrice = shippingFlatRate
	}
	order.TotalPrice = order.ItemsPrice + order.TaxPrice + order.ShippingPrice

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	util.Logger.Info("订单创建成功",
		zap.Int("order_id", order.ID),
		zap.Int("user_id", userID),
		zap.Float64("total", order.TotalPrice))

	user, err := s.userRepo.FindByID(userID)
	if err == nil && user != nil {
		if err := s.emailService.SendOrderConfirmation(user.Email, user.Name, order); err != nil {
			util.Logger.Error("订单确认邮件发送失败", zap.Error(err), zap.Int("order_id", order.ID))
		}
	}

	return order, nil
}

// GetOrderByID 获取订单，非管理员只能查看本人订单
func (s *OrderService) GetOrderByID(id, userID int, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to find order", err)
	}
	if order == nil {
		return nil, apperrors.New(apperrors.ErrOrderNotFound, "Order not found")
	}
	// 非本人订单按不存在处理，避免泄露他人订单ID的有效性
	if !isAdmin && order.UserID != userID {
		return nil, apperrors.New(apperrors.ErrOrderNotFound, "Order not found")
	}
	return order, nil
}

// ListUserOrders 列出用户本人的订单
func (s *OrderService) ListUserOrders(userID, page, pageSize int) ([]*model.Order, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return s.orderRepo.ListByUser(userID, page, pageSize)
}

// ListOrders 管理员按状态分页列出全部订单
func (s *OrderService) ListOrders(page, pageSize int, status string) ([]*model.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	if status != "" && !model.ValidOrderStatus(status) {
		return nil, 0, apperrors.New(apperrors.ErrBadRequest, "Invalid order status")
	}
	return s.orderRepo.List(page, pageSize, status)
}

// UpdateOrderStatus 更新订单状态，进入 delivered 时记录交付时间
func (s *OrderService) UpdateOrderStatus(id int, status string) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, apperrors.New(apperrors.ErrBadRequest, "Invalid order status")
	}

	var deliveredAt *time.Time
	if status == model.OrderDelivered {
		now := time.Now()
		deliveredAt = &now
	}

	if err := s.orderRepo.UpdateStatus(id, status, deliveredAt); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to find order", err)
	}

	util.Logger.Info("订单状态已更新", zap.Int("order_id", id), zap.String("status", status))
	return order, nil
}
