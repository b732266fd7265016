package service

import (
	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/repository/interfaces"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"go.uber.org/zap"
)

// AdminServiceInterface 管理后台服务操作
type AdminServiceInterface interface {
	GetUsers(page, pageSize int) ([]*model.User, int, error)
	UpdateUserRole(userID int, role string) error
	GetSystemStats() (*model.SystemStats, error)
}

// AdminService 管理后台服务
type AdminService struct {
	userRepo    interfaces.UserRepository
	productRepo interfaces.ProductRepository
	orderRepo   interfaces.OrderRepository
}

func NewAdminService(userRepo interfaces.UserRepository, productRepo interfaces.ProductRepository,
	orderRepo interfaces.OrderRepository) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// GetUsers 分页列出用户
func (s *AdminService) GetUsers(page, pageSize int) ([]*model.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	total, err := s.userRepo.Count()
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrDatabase, "Failed to count users", err)
	}
	users, err := s.userRepo.FindAll(page, pageSize)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrDatabase, "Failed to list users", err)
	}
	return users, total, nil
}

// UpdateUserRole 变更用户角色
func (s *AdminService) UpdateUserRole(userID int, role string) error {
	if !model.ValidRole(role) {
		return apperrors.New(apperrors.ErrBadRequest, "Invalid role")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find user", err)
	}
	if user == nil {
		return apperrors.New(apperrors.ErrUserNotFound, "User not found")
	}

	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to update role", err)
	}

	util.Logger.Info("用户角色已变更",
		zap.Int("user_id", userID),
		zap.String("role", role))
	return nil
}

// GetSystemStats 汇总系统统计数据
func (s *AdminService) GetSystemStats() (*model.SystemStats, error) {
	stats := &model.SystemStats{}
	var err error

	if stats.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to count users", err)
	}
	if stats.TotalProducts, err = s.productRepo.Count(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to count products", err)
	}
	if stats.TotalOrders, err = s.orderRepo.Count(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to count orders", err)
	}
	if stats.PendingOrders, err = s.orderRepo.CountByStatus(model.OrderPending); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to count pending orders", err)
	}
	if stats.TotalRevenue, err = s.orderRepo.TotalRevenue(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to sum revenue", err)
	}
	return stats, nil
}
