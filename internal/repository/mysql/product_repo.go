package mysql

import (
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"go.uber.org/zap"
)

// productRepository 实现了 ProductRepository 接口
type productRepository struct {
	db *sql.DB
}

// NewProductRepository 创建一个新的 productRepository 实例
func NewProductRepository(db *sql.DB) *productRepository {
	return &productRepository{db}
}

const productColumns = `p.id, p.name, p.slug, p.description, p.price, p.discount_price,
	p.category_id, p.stock, p.unit, p.weight, p.sku, p.tags,
	p.is_featured, p.is_active, p.rating_average, p.rating_count, p.vendor_id,
	p.created_at, p.updated_at`

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	var discountPrice, weight sql.NullFloat64
	var sku, tags sql.NullString
	var vendorID sql.NullInt64

	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &discountPrice,
		&p.CategoryID, &p.Stock, &p.Unit, &weight, &sku, &tags,
		&p.IsFeatured, &p.IsActive, &p.RatingAverage, &p.RatingCount, &vendorID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discountPrice.Valid {
		p.DiscountPrice = &discountPrice.Float64
	}
	if weight.Valid {
		p.Weight = &weight.Float64
	}
	p.SKU = sku.String
	if vendorID.Valid {
		v := int(vendorID.Int64)
		p.VendorID = &v
	}
	if tags.String != "" {
		p.Tags = strings.Split(tags.String, ",")
	}
	p.Images = []*model.ProductImage{}
	return &p, nil
}

// Create 在单个事务内写入商品与图片
func (r *productRepository) Create(product *model.Product) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO products
		(name, slug, description, price, discount_price, category_id, stock, unit, weight, sku, tags,
		 is_featured, is_active, vendor_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// SKU 可选，空值以 NULL 入库以免撞上唯一索引
	result, err := tx.Exec(query,
		product.Name, product.Slug, product.Description, product.Price, product.DiscountPrice,
		product.CategoryID, product.Stock, product.Unit, product.Weight, nullString(product.SKU),
		strings.Join(product.Tags, ","), product.IsFeatured, product.IsActive, product.VendorID)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.New(apperrors.ErrResourceExists, "Product with this slug or SKU already exists")
		}
		util.Logger.Error("创建商品失败", zap.Error(err), zap.String("slug", product.Slug))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	product.ID = int(id)

	for _, image := range product.Images {
		res, err := tx.Exec(`INSERT INTO product_images (product_id, url) VALUES (?, ?)`,
			product.ID, image.URL)
		if err != nil {
			return fmt.Errorf("failed to insert product image: %w", err)
		}
		imageID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		image.ID = int(imageID)
		image.ProductID = product.ID
	}

	return tx.Commit()
}

// FindByID 通过ID查找商品，未找到时返回 (nil, nil)
func (r *productRepository) FindByID(id int) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ?`
	product, err := scanProduct(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadImages([]*model.Product{product}); err != nil {
		return nil, err
	}
	if err := r.loadCategory(product); err != nil {
		return nil, err
	}
	return product, nil
}

// FindBySlug 通过 slug 查找商品
func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.slug = ?`
	product, err := scanProduct(r.db.QueryRow(query, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadImages([]*model.Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

// List 返回符合条件的分页商品与总数，过滤条件动态拼接
func (r *productRepository) List(filter model.ProductFilter) ([]*model.Product, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.ActiveOnly {
		where = append(where, "p.is_active = true")
	}
	if filter.CategoryID > 0 {
		where = append(where, "p.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Search != "" {
		where = append(where, "(p.name LIKE ? OR p.description LIKE ? OR p.tags LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.MinPrice != nil {
		where = append(where, "p.price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where = append(where, "p.price <= ?")
		args = append(args, *filter.MaxPrice)
	}
	if filter.FeaturedOnly {
		where = append(where, "p.is_featured = true")
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM products p WHERE ` + whereClause
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := `SELECT ` + productColumns + ` FROM products p WHERE ` + whereClause +
		` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadImages(products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update 更新商品信息与图片，不存在时返回 ErrProductNotFound
func (r *productRepository) Update(product *model.Product) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE products
		SET name = ?, slug = ?, description = ?, price = ?, discount_price = ?, category_id = ?,
			stock = ?, unit = ?, weight = ?, sku = ?, tags = ?, is_featured = ?, is_active = ?,
			updated_at = NOW()
		WHERE id = ?`

	result, err := tx.Exec(query,
		product.Name, product.Slug, product.Description, product.Price, product.DiscountPrice,
		product.CategoryID, product.Stock, product.Unit, product.Weight, nullString(product.SKU),
		strings.Join(product.Tags, ","), product.IsFeatured, product.IsActive, product.ID)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.New(apperrors.ErrResourceExists, "Product with this slug or SKU already exists")
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// RowsAffected 为 0 也可能是没有字段变化，需要确认商品是否存在
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, product.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.New(apperrors.ErrProductNotFound, "Product not found")
		}
	}

	return tx.Commit()
}

// Delete 删除商品及其图片
func (r *productRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product_images WHERE product_id = ?`, id); err != nil {
		return err
	}

	result, err := tx.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrProductNotFound, "Product not found")
	}

	return tx.Commit()
}

// AddImage 为商品追加一张图片
func (r *productRepository) AddImage(image *model.ProductImage) error {
	result, err := r.db.Exec(`INSERT INTO product_images (product_id, url) VALUES (?, ?)`,
		image.ProductID, image.URL)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	image.ID = int(id)
	return nil
}

// Count 返回商品总数
func (r *productRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count)
	return count, err
}

// loadImages 批量加载商品图片
func (r *productRepository) loadImages(products []*model.Product) error {
	if len(products) == 0 {
		return nil
	}

	index := make(map[int]*model.Product, len(products))
	placeholders := make([]string, 0, len(products))
	args := make([]interface{}, 0, len(products))
	for _, p := range products {
		index[p.ID] = p
		placeholders = append(placeholders, "?")
		args = append(args, p.ID)
	}

	query := `SELECT id, product_id, url FROM product_images
		WHERE product_id IN (` + strings.Join(placeholders, ",") + `) ORDER BY id`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var image model.ProductImage
		if err := rows.Scan(&image.ID, &image.ProductID, &image.URL); err != nil {
			return fmt.Errorf("failed to scan product image: %w", err)
		}
		if p, ok := index[image.ProductID]; ok {
			p.Images = append(p.Images, &image)
		}
	}
	return rows.Err()
}

// loadCategory 加载商品所属分类
func (r *productRepository) loadCategory(product *model.Product) error {
	var category model.Category
	var description, imageURL sql.NullString
	var parentID sql.NullInt64

	query := `SELECT id, name, slug, description, image_url, parent_category_id, is_active, created_at, updated_at
		FROM categories WHERE id = ?`
	err := r.db.QueryRow(query, product.CategoryID).Scan(
		&category.ID, &category.Name, &category.Slug, &description, &imageURL,
		&parentID, &category.IsActive, &category.CreatedAt, &category.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	category.Description = description.String
	category.ImageURL = imageURL.String
	if parentID.Valid {
		v := int(parentID.Int64)
		category.ParentCategoryID = &v
	}
	product.Category = &category
	return nil
}
