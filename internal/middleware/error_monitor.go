package middleware

import (
	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorMonitorMiddleware 在请求结束后把错误连同请求上下文记入统计
func ErrorMonitorMiddleware(analytics *apperrors.ErrorAnalytics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		ctx := apperrors.ErrorContext{
			RequestID: RequestID(c),
			UserID:    c.GetInt("user_id"),
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
		}

		for _, e := range c.Errors {
			traced := apperrors.NewTracedError(e.Err, ctx)
			analytics.Record(traced)

			zap.L().Error("请求处理错误",
				zap.Int("error_code", int(traced.Code)),
				zap.String("error_message", traced.Message),
				zap.Error(traced.Err),
				zap.String("request_id", ctx.RequestID),
				zap.String("path", ctx.Path),
				zap.String("method", ctx.Method))
		}
	}
}
