package middleware

import (
	"strings"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/repository/interfaces"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 解析 Bearer 令牌并把当前用户注入上下文
// 签发时间早于最近一次改密的令牌视为失效
func AuthMiddleware(userRepo interfaces.UserRepository, tokens *util.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apperrors.HandleError(c, apperrors.New(apperrors.ErrUnauthorized, "Not authorized to access this route"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			apperrors.HandleError(c, apperrors.New(apperrors.ErrUnauthorized, "Not authorized to access this route"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			apperrors.HandleError(c, apperrors.New(apperrors.ErrUnauthorized, "Not authorized to access this route"))
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrDatabase, "Failed to load user", err))
			c.Abort()
			return
		}
		if user == nil {
			apperrors.HandleError(c, apperrors.New(apperrors.ErrUnauthorized, "Not authorized to access this route"))
			c.Abort()
			return
		}

		if user.PasswordChangedAt != nil && claims.IssuedAt.Before(*user.PasswordChangedAt) {
			util.Logger.Warn("拒绝改密前签发的令牌", zap.Int("user_id", user.ID))
			apperrors.HandleError(c, apperrors.New(apperrors.ErrUnauthorized, "Not authorized to access this route"))
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("current_user", user)
		c.Next()
	}
}

// CurrentUser 从上下文取出 AuthMiddleware 注入的用户
func CurrentUser(c *gin.Context) *model.User {
	if v, exists := c.Get("current_user"); exists {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
