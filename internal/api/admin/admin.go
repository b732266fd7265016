package admin

import (
	"strconv"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler 处理管理后台的HTTP请求
type AdminHandler struct {
	adminService service.AdminServiceInterface
	analytics    *apperrors.ErrorAnalytics
}

func NewAdminHandler(adminService service.AdminServiceInterface, analytics *apperrors.ErrorAnalytics) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		analytics:    analytics,
	}
}

// ListUsers 分页列出用户
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	users, total, err := h.adminService.GetUsers(page, pageSize)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{
		"users":     users,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}, "")
}

// UpdateUserRole 变更用户角色
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid user ID"))
		return
	}

	var roleData struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&roleData); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	if err := h.adminService.UpdateUserRole(userID, roleData.Role); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, nil, "User role updated")
}

// GetStats 返回系统统计数据
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetSystemStats()
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"stats": stats}, "")
}

// GetErrorStats 返回线上错误统计
func (h *AdminHandler) GetErrorStats(c *gin.Context) {
	apperrors.HandleSuccess(c, h.analytics.GetStats(), "")
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
