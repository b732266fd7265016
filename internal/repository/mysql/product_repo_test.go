package mysql

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func init() {
	util.InitLogger("error")
}

func newMockDB(t *testing.T) (*productRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProductRepository(db), mock
}

// TestProductCreateEmptySKUStoredAsNull 未填SKU应以NULL入库，不能占住唯一索引的空串位
func TestProductCreateEmptySKUStoredAsNull(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO products`).
		WithArgs("Deshi Rice", "deshi-rice", "", 65.0, nil, 2, 10, "kg", nil, nil, "", false, true, nil).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	product := &model.Product{
		Name:       "Deshi Rice",
		Slug:       "deshi-rice",
		Price:      65.0,
		CategoryID: 2,
		Stock:      10,
		Unit:       "kg",
		IsActive:   true,
	}
	err := repo.Create(product)
	assert.NoError(t, err)
	assert.Equal(t, 11, product.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestProductCreateDuplicate 唯一键冲突应映射为资源已存在
func TestProductCreateDuplicate(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO products`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := repo.Create(&model.Product{Name: "Deshi Rice", Slug: "deshi-rice", Price: 65.0, CategoryID: 2})
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceExists))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestProductScanNullSKU NULL的SKU应扫描为空串
func TestProductScanNullSKU(t *testing.T) {
	repo, mock := newMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "slug", "description", "price", "discount_price",
		"category_id", "stock", "unit", "weight", "sku", "tags",
		"is_featured", "is_active", "rating_average", "rating_count", "vendor_id",
		"created_at", "updated_at",
	}).AddRow(11, "Deshi Rice", "deshi-rice", "", 65.0, nil,
		2, 10, "kg", nil, nil, nil,
		false, true, 0.0, 0, nil,
		now, now)

	mock.ExpectQuery(`(?s)SELECT .+ FROM products p WHERE p\.slug = \?`).
		WithArgs("deshi-rice").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT id, product_id, url FROM product_images`).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "url"}))

	product, err := repo.FindBySlug("deshi-rice")
	assert.NoError(t, err)
	assert.NotNil(t, product)
	assert.Equal(t, "", product.SKU)
	assert.NoError(t, mock.ExpectationsWereMet())
}
