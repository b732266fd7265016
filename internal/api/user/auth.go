package user

import (
	"strconv"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/service"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService service.UserServiceInterface
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService service.UserServiceInterface) *AuthHandler {
	return &AuthHandler{userService}
}

// Register 处理用户注册请求
func (h *AuthHandler) Register(c *gin.Context) {
	var registerData struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Phone    string `json:"phone"`
	}

	if err := c.ShouldBindJSON(&registerData); err != nil {
		util.Logger.Warn("注册失败，无效的请求数据", zap.Error(err))
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	user, token, err := h.userService.Register(
		registerData.Name, registerData.Email, registerData.Password, registerData.Phone)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleCreated(c, gin.H{
		"user":  user,
		"token": token,
	}, "Registration successful. Please verify your email.")
}

// Login 处理用户登录请求
func (h *AuthHandler) Login(c *gin.Context) {
	var loginData struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	user, token, err := h.userService.Login(loginData.Email, loginData.Password)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{
		"token": token,
		"user":  user,
	}, "Login successful")
}

// VerifyEmail 处理邮箱验证码校验
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid user ID"))
		return
	}

	var verifyData struct {
		OTP string `json:"otp" binding:"required,len=6,numeric"`
	}
	if err := c.ShouldBindJSON(&verifyData); err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrInvalidOTP, "Invalid or expired OTP"))
		return
	}

	user, err := h.userService.VerifyEmail(userID, verifyData.OTP)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"user": user}, "Email verified successfully")
}

// ResendOTP 重新发送验证码
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid user ID"))
		return
	}

	if err := h.userService.ResendOTP(userID); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, nil, "Verification code sent")
}

// ForgotPassword 请求密码重置邮件
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var requestData struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&requestData); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	if err := h.userService.ForgotPassword(requestData.Email); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, nil, "Password reset email sent")
}

// ResetPassword 用重置令牌设置新密码
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.Param("token")

	var resetData struct {
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&resetData); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	sessionToken, err := h.userService.ResetPassword(token, resetData.Password)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"token": sessionToken}, "Password reset successful")
}
