package interfaces

import (
	"time"

	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
)

// OrderRepository 接口定义了订单仓库应该实现的方法
type OrderRepository interface {
	// Create 在单个事务内写入订单、明细并扣减库存
	// 库存不足时整个事务回滚并返回 ErrInsufficientStock
	Create(order *model.Order) error
	FindByID(id int) (*model.Order, error)
	ListByUser(userID, page, pageSize int) ([]*model.Order, error)
	List(page, pageSize int, status string) ([]*model.Order, int, error)
	UpdateStatus(id int, status string, deliveredAt *time.Time) error
	Count() (int, error)
	CountByStatus(status string) (int, error)
	TotalRevenue() (float64, error)
}
