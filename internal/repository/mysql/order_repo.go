package mysql

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"go.uber.org/zap"
)

// orderRepository 实现了 OrderRepository 接口
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository 创建一个新的 orderRepository 实例
func NewOrderRepository(db *sql.DB) *orderRepository {
	return &orderRepository{db}
}

const orderColumns = `id, user_id, street, city, state, zip_code, country, phone,
	payment_method, payment_status, items_price, tax_price, shipping_price, total_price,
	status, delivered_at, created_at, updated_at`

func scanOrder(row rowScanner) (*model.Order, error) {
	var order model.Order
	var deliveredAt sql.NullTime

	err := row.Scan(
		&order.ID, &order.UserID,
		&order.ShippingAddress.Street, &order.ShippingAddress.City, &order.ShippingAddress.State,
		&order.ShippingAddress.ZipCode, &order.ShippingAddress.Country, &order.ShippingAddress.Phone,
		&order.PaymentMethod, &order.PaymentStatus,
		&order.ItemsPrice, &order.TaxPrice, &order.ShippingPrice, &order.TotalPrice,
		&order.Status, &deliveredAt, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deliveredAt.Valid {
		order.DeliveredAt = &deliveredAt.Time
	}
	order.Items = []*model.OrderItem{}
	return &order, nil
}

// Create 在单个事务内写入订单、明细并扣减库存
// 扣减带 stock >= ? 守卫：库存不足时影响行数为 0，整体回滚
func (r *orderRepository) Create(order *model.Order) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range order.Items {
		result, err := tx.Exec(
			`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			item.Quantity, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperrors.New(apperrors.ErrInsufficientStock,
				fmt.Sprintf("Insufficient stock for product %d", item.ProductID))
		}
	}

	result, err := tx.Exec(`INSERT INTO orders
		(user_id, street, city, state, zip_code, country, phone,
		 payment_method, payment_status, items_price, tax_price, shipping_price, total_price, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.UserID,
		order.ShippingAddress.Street, order.ShippingAddress.City, order.ShippingAddress.State,
		order.ShippingAddress.ZipCode, order.ShippingAddress.Country, order.ShippingAddress.Phone,
		order.PaymentMethod, order.PaymentStatus,
		order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice, order.Status)
	if err != nil {
		util.Logger.Error("创建订单失败", zap.Error(err), zap.Int("user_id", order.UserID))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = int(id)

	for _, item := range order.Items {
		res, err := tx.Exec(`INSERT INTO order_items (order_id, product_id, name, quantity, price, image)
			VALUES (?, ?, ?, ?, ?, ?)`,
			order.ID, item.ProductID, item.Name, item.Quantity, item.Price, nullString(item.Image))
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		item.ID = int(itemID)
		item.OrderID = order.ID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	return nil
}

// FindByID 通过ID查找订单，未找到时返回 (nil, nil)
func (r *orderRepository) FindByID(id int) (*model.Order, error) {
	order, err := scanOrder(r.db.QueryRow(
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems([]*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser 返回用户的订单列表
func (r *orderRepository) ListByUser(userID, page, pageSize int) ([]*model.Order, error) {
	offset := (page - 1) * pageSize
	rows, err := r.db.Query(
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// List 返回分页的订单列表与总数，可按状态过滤
func (r *orderRepository) List(page, pageSize int, status string) ([]*model.Order, int, error) {
	where := "1=1"
	args := []interface{}{}
	if status != "" {
		where = "status = ?"
		args = append(args, status)
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	rows, err := r.db.Query(
		`SELECT `+orderColumns+` FROM orders WHERE `+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.loadItems(orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 更新订单状态
func (r *orderRepository) UpdateStatus(id int, status string, deliveredAt *time.Time) error {
	result, err := r.db.Exec(
		`UPDATE orders SET status = ?, delivered_at = ?, updated_at = NOW() WHERE id = ?`,
		status, deliveredAt, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrOrderNotFound, "Order not found")
	}
	return nil
}

// Count 返回订单总数
func (r *orderRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

// CountByStatus 返回指定状态的订单数
func (r *orderRepository) CountByStatus(status string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM orders WHERE status = ?", status).Scan(&count)
	return count, err
}

// TotalRevenue 返回已交付订单的总金额
func (r *orderRepository) TotalRevenue() (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRow(
		"SELECT SUM(total_price) FROM orders WHERE status = ?", model.OrderDelivered).Scan(&total)
	return total.Float64, err
}

func collectOrders(rows *sql.Rows) ([]*model.Order, error) {
	var orders []*model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// loadItems 批量加载订单明细
func (r *orderRepository) loadItems(orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[int]*model.Order, len(orders))
	placeholders := make([]string, 0, len(orders))
	args := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		index[o.ID] = o
		placeholders = append(placeholders, "?")
		args = append(args, o.ID)
	}

	query := `SELECT id, order_id, product_id, name, quantity, price, image FROM order_items
		WHERE order_id IN (` + strings.Join(placeholders, ",") + `) ORDER BY id`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		var image sql.NullString
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.Quantity, &item.Price, &image); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Image = image.String
		if o, ok := index[item.OrderID]; ok {
			o.Items = append(o.Items, &item)
		}
	}
	return rows.Err()
}
