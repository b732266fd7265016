package user

import (
	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/service"
	"github.com/gin-gonic/gin"
)

// ProfileHandler 处理当前用户资料相关的HTTP请求
type ProfileHandler struct {
	userService service.UserServiceInterface
}

func NewProfileHandler(userService service.UserServiceInterface) *ProfileHandler {
	return &ProfileHandler{userService}
}

// 会话通过校验后账号又不存在了，按未认证处理
func vanishedUser(err error) error {
	if apperrors.Is(err, apperrors.ErrUserNotFound) {
		return apperrors.New(apperrors.ErrUnauthorized, "Not authorized to access this route")
	}
	return err
}

// Me 返回当前登录用户
func (h *ProfileHandler) Me(c *gin.Context) {
	userID := c.GetInt("user_id")

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		apperrors.HandleError(c, vanishedUser(err))
		return
	}

	apperrors.HandleSuccess(c, gin.H{"user": user}, "")
}

// UpdateProfile 更新当前用户的姓名与电话
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var updateData struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	user, err := h.userService.UpdateProfile(userID, updateData.Name, updateData.Phone)
	if err != nil {
		apperrors.HandleError(c, vanishedUser(err))
		return
	}

	apperrors.HandleSuccess(c, gin.H{"user": user}, "Profile updated successfully")
}

// UploadAvatar 上传当前用户头像
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetInt("user_id")

	file, err := c.FormFile("avatar")
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Avatar file is required"))
		return
	}

	url, err := h.userService.UpdateAvatar(userID, file)
	if err != nil {
		apperrors.HandleError(c, vanishedUser(err))
		return
	}

	apperrors.HandleSuccess(c, gin.H{"avatar_url": url}, "Avatar updated successfully")
}
