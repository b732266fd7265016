package service

import (
	"fmt"
	"mime/multipart"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/repository/interfaces"
	"github.com/MHR-RONY/Gramer--Bazar/internal/storage"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"go.uber.org/zap"
)

// ProductServiceInterface 商品服务操作
type ProductServiceInterface interface {
	CreateProduct(product *model.Product) error
	GetProductByID(id int) (*model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	ListProducts(filter model.ProductFilter) ([]*model.Product, int, error)
	UpdateProduct(product *model.Product) error
	DeleteProduct(id int) error
	UploadProductImage(productID int, file *multipart.FileHeader) (string, error)
}

// ProductService 商品服务
type ProductService struct {
	productRepo  interfaces.ProductRepository
	categoryRepo interfaces.CategoryRepository
	fileStorage  storage.FileStorage
}

func NewProductService(productRepo interfaces.ProductRepository,
	categoryRepo interfaces.CategoryRepository, fileStorage storage.FileStorage) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		fileStorage:  fileStorage,
	}
}

// CreateProduct 创建商品，slug 缺省时由名称生成
func (s *ProductService) CreateProduct(product *model.Product) error {
	if product.Slug == "" {
		product.Slug = util.Slugify(product.Name)
	}

	category, err := s.categoryRepo.FindByID(product.CategoryID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find category", err)
	}
	if category == nil {
		return apperrors.New(apperrors.ErrCategoryNotFound, "Category not found")
	}

	if err := s.productRepo.Create(product); err != nil {
		return err
	}

	util.Logger.Info("商品创建成功", zap.Int("product_id", product.ID), zap.String("slug", product.Slug))
	return nil
}

// GetProductByID 获取商品详情
func (s *ProductService) GetProductByID(id int) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to find product", err)
	}
	if product == nil {
		return nil, apperrors.New(apperrors.ErrProductNotFound, "Product not found")
	}
	return product, nil
}

// GetProductBySlug 通过 slug 获取商品详情
func (s *ProductService) GetProductBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to find product", err)
	}
	if product == nil {
		return nil, apperrors.New(apperrors.ErrProductNotFound, "Product not found")
	}
	return product, nil
}

// ListProducts 按过滤条件分页列出商品
func (s *ProductService) ListProducts(filter model.ProductFilter) ([]*model.Product, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 12
	}
	return s.productRepo.List(filter)
}

// UpdateProduct 更新商品
func (s *ProductService) UpdateProduct(product *model.Product) error {
	existing, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find product", err)
	}
	if existing == nil {
		return apperrors.New(apperrors.ErrProductNotFound, "Product not found")
	}

	if product.Slug == "" {
		product.Slug = existing.Slug
	}
	return s.productRepo.Update(product)
}

// DeleteProduct 删除商品
func (s *ProductService) DeleteProduct(id int) error {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find product", err)
	}
	if existing == nil {
		return apperrors.New(apperrors.ErrProductNotFound, "Product not found")
	}
	return s.productRepo.Delete(id)
}

// UploadProductImage 上传商品图片并记录到图库
func (s *ProductService) UploadProductImage(productID int, file *multipart.FileHeader) (string, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabase, "Failed to find product", err)
	}
	if product == nil {
		return "", apperrors.New(apperrors.ErrProductNotFound, "Product not found")
	}

	path := fmt.Sprintf("products/%d/%s", productID, util.GenerateUniqueFilename(file.Filename))
	url, err := s.fileStorage.UploadFile(file, path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "Failed to upload image", err)
	}

	image := &model.ProductImage{
		ProductID: productID,
		URL:       url,
	}
	if err := s.productRepo.AddImage(image); err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabase, "Failed to save image", err)
	}
	return url, nil
}
