package model

import "time"

// 订单状态
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// 支付状态
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Order 订单模型
type Order struct {
	ID              int          `json:"id"`
	UserID          int          `json:"user_id"`
	Items           []*OrderItem `json:"items"`
	ShippingAddress OrderAddress `json:"shipping_address"`
	PaymentMethod   string       `json:"payment_method"`
	PaymentStatus   string       `json:"payment_status"`
	ItemsPrice      float64      `json:"items_price"`
	TaxPrice        float64      `json:"tax_price"`
	ShippingPrice   float64      `json:"shipping_price"`
	TotalPrice      float64      `json:"total_price"`
	Status          string       `json:"status"`
	DeliveredAt     *time.Time   `json:"delivered_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// OrderItem 订单明细，价格在下单时快照
type OrderItem struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
}

// OrderAddress 订单收货地址快照
type OrderAddress struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Country string `json:"country" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

// ValidOrderStatus 判断订单状态是否合法
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}
