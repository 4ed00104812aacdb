package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

// ErrorHandlerMiddleware 统一错误处理中间件
// 捕获handler中设置的错误,自动转换为合适的HTTP响应
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var serviceErr *apperrors.ServiceError
		if errors.As(err, &serviceErr) {
			statusCode := MapErrorCodeToHTTPStatus(serviceErr.Code)
			if statusCode >= http.StatusInternalServerError {
				logger.Error("Request failed", "path", c.FullPath(), "code", serviceErr.Code, "error", err)
			}
			c.JSON(statusCode, gin.H{
				"error":   serviceErr.Message,
				"code":    serviceErr.Code,
				"details": serviceErr.Details,
			})
			return
		}

		// 未知错误,返回500
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
			"code":  apperrors.ErrorCodeInternalError,
		})
	}
}

// MapErrorCodeToHTTPStatus 将业务错误码映射到HTTP状态码
func MapErrorCodeToHTTPStatus(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrorCodeInvalidRequest, apperrors.ErrorCodeUnsupportedDrive:
		return http.StatusBadRequest
	case apperrors.ErrorCodeAuthFailed:
		return http.StatusUnauthorized
	case apperrors.ErrorCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorCodeConflict:
		return http.StatusConflict
	case apperrors.ErrorCodeRemoteRejected:
		return http.StatusUnprocessableEntity
	case apperrors.ErrorCodeTransport, apperrors.ErrorCodeDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RecoverMiddleware 恢复中间件 - 捕获panic并转换为500错误
func RecoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered", "path", c.Request.URL.Path, "panic", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"code":  apperrors.ErrorCodeInternalError,
				})
			}
		}()
		c.Next()
	}
}

// RequestLogMiddleware 记录每个请求的方法、路径、状态码和耗时
func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond))
	}
}
