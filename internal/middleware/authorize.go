package middleware

import (
	"fmt"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/gin-gonic/gin"
)

// Authorize 限制路由只允许指定角色访问，必须排在 AuthMiddleware 之后
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			apperrors.HandleError(c, apperrors.New(apperrors.ErrUnauthorized, "Not authorized to access this route"))
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		apperrors.HandleError(c, apperrors.New(apperrors.ErrForbidden,
			fmt.Sprintf("User role '%s' is not authorized to access this route", user.Role)))
		c.Abort()
	}
}
