package service

import (
	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/repository/interfaces"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"go.uber.org/zap"
)

// CategoryServiceInterface 分类服务操作
type CategoryServiceInterface interface {
	CreateCategory(category *model.Category) error
	GetCategoryByID(id int) (*model.Category, error)
	GetCategoryBySlug(slug string) (*model.Category, error)
	ListCategories(activeOnly bool) ([]*model.Category, error)
	UpdateCategory(category *model.Category) error
	DeleteCategory(id int) error
}

// CategoryService 分类服务
type CategoryService struct {
	categoryRepo interfaces.CategoryRepository
}

func NewCategoryService(categoryRepo interfaces.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategory 创建分类，slug 缺省时由名称生成
func (s *CategoryService) CreateCategory(category *model.Category) error {
	if category.Slug == "" {
		category.Slug = util.Slugify(category.Name)
	}

	if category.ParentCategoryID != nil {
		parent, err := s.categoryRepo.FindByID(*category.ParentCategoryID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find parent category", err)
		}
		if parent == nil {
			return apperrors.New(apperrors.ErrCategoryNotFound, "Parent category not found")
		}
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return err
	}

	util.Logger.Info("分类创建成功", zap.Int("category_id", category.ID), zap.String("slug", category.Slug))
	return nil
}

func (s *CategoryService) GetCategoryByID(id int) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to find category", err)
	}
	if category == nil {
		return nil, apperrors.New(apperrors.ErrCategoryNotFound, "Category not found")
	}
	return category, nil
}

func (s *CategoryService) GetCategoryBySlug(slug string) (*model.Category, error) {
	category, err := s.categoryRepo.FindBySlug(slug)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to find category", err)
	}
	if category == nil {
		return nil, apperrors.New(apperrors.ErrCategoryNotFound, "Category not found")
	}
	return category, nil
}

func (s *CategoryService) ListCategories(activeOnly bool) ([]*model.Category, error) {
	return s.categoryRepo.List(activeOnly)
}

func (s *CategoryService) UpdateCategory(category *model.Category) error {
	existing, err := s.categoryRepo.FindByID(category.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find category", err)
	}
	if existing == nil {
		return apperrors.New(apperrors.ErrCategoryNotFound, "Category not found")
	}
	if category.Slug == "" {
		category.Slug = existing.Slug
	}
	return s.categoryRepo.Update(category)
}

func (s *CategoryService) DeleteCategory(id int) error {
	return s.categoryRepo.Delete(id)
}
