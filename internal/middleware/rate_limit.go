package middleware

import (
	"time"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/limiter"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware 按客户端IP做固定窗口限流
// Redis 不可用时放行，限流只削峰不挡业务
func RateLimitMiddleware(manager *limiter.Manager, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()

		allowed, err := manager.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			util.Logger.Warn("限流检查失败", zap.Error(err), zap.String("ip", c.ClientIP()))
			c.Next()
			return
		}

		if !allowed {
			apperrors.HandleError(c, apperrors.New(apperrors.ErrTooManyRequests,
				"Too many requests, please try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
