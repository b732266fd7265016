package interfaces

import "github.com/MHR-RONY/Gramer--Bazar/internal/model"

// ProductRepository 接口定义了商品仓库应该实现的方法
type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id int) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	// List 返回符合条件的分页商品与总数
	List(filter model.ProductFilter) ([]*model.Product, int, error)
	Update(product *model.Product) error
	Delete(id int) error
	AddImage(image *model.ProductImage) error
	Count() (int, error)
}

// CategoryRepository 接口定义了分类仓库应该实现的方法
type CategoryRepository interface {
	Create(category *model.Category) error
	FindByID(id int) (*model.Category, error)
	FindBySlug(slug string) (*model.Category, error)
	List(activeOnly bool) ([]*model.Category, error)
	Update(category *model.Category) error
	Delete(id int) error
}
