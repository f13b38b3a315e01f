package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail_service/internal/service"
)

// ==================== 统一响应 ====================

// statusOf 业务错误分类 -> HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrItemsNotFound),
		errors.Is(err, service.ErrFormat),
		errors.Is(err, service.ErrFetch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError 按错误分类返回, 未分类的错误不向客户端暴露细节
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("[HTTP] 内部错误", zap.String("path", c.Request.URL.Path), zap.Error(err))
		_ = c.Error(err)
		message = "服务器内部错误"
	}

	c.JSON(status, gin.H{
		"code":    status,
		"reason":  service.Reason(err),
		"message": message,
	})
}

// respondBindError 请求参数绑定失败
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    400,
		"reason":  service.ErrValidation.Error(),
		"message": "参数错误: " + err.Error(),
	})
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"code":    0,
		"message": message,
		"data":    data,
	})
}
