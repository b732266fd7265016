package mysql

import (
	"database/sql"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
)

// categoryRepository 实现了 CategoryRepository 接口
type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository 创建一个新的 categoryRepository 实例
func NewCategoryRepository(db *sql.DB) *categoryRepository {
	return &categoryRepository{db}
}

const categoryColumns = `id, name, slug, description, image_url, parent_category_id, is_active, created_at, updated_at`

func scanCategory(row rowScanner) (*model.Category, error) {
	var category model.Category
	var description, imageURL sql.NullString
	var parentID sql.NullInt64

	err := row.Scan(
		&category.ID, &category.Name, &category.Slug, &description, &imageURL,
		&parentID, &category.IsActive, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}

	category.Description = description.String
	category.ImageURL = imageURL.String
	if parentID.Valid {
		v := int(parentID.Int64)
		category.ParentCategoryID = &v
	}
	return &category, nil
}

// Create 创建一个新分类，名称与 slug 的唯一性由索引保证
func (r *categoryRepository) Create(category *model.Category) error {
	query := `INSERT INTO categories (name, slug, description, image_url, parent_category_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query,
		category.Name, category.Slug, nullString(category.Description),
		nullString(category.ImageURL), category.ParentCategoryID, category.IsActive)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.New(apperrors.ErrResourceExists, "Category already exists")
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	category.ID = int(id)
	return nil
}

// FindByID 通过ID查找分类，未找到时返回 (nil, nil)
func (r *categoryRepository) FindByID(id int) (*model.Category, error) {
	category, err := scanCategory(r.db.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return category, err
}

// FindBySlug 通过 slug 查找分类
func (r *categoryRepository) FindBySlug(slug string) (*model.Category, error) {
	category, err := scanCategory(r.db.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return category, err
}

// List 返回分类列表
func (r *categoryRepository) List(activeOnly bool) ([]*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Update 更新分类信息
func (r *categoryRepository) Update(category *model.Category) error {
	query := `UPDATE categories
		SET name = ?, slug = ?, description = ?, image_url = ?, parent_category_id = ?, is_active = ?,
			updated_at = NOW()
		WHERE id = ?`
	result, err := r.db.Exec(query,
		category.Name, category.Slug, nullString(category.Description),
		nullString(category.ImageURL), category.ParentCategoryID, category.IsActive, category.ID)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.New(apperrors.ErrResourceExists, "Category already exists")
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, category.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.New(apperrors.ErrCategoryNotFound, "Category not found")
		}
	}
	return nil
}

// Delete 删除分类
func (r *categoryRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		// 分类下还有商品时外键会拦下删除
		if isRowReferenced(err) {
			return apperrors.New(apperrors.ErrBadRequest, "Cannot delete category with existing products")
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrCategoryNotFound, "Category not found")
	}
	return nil
}
