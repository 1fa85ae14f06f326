// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agent-console/internal/interfaces/http/dto"
	apperrors "agent-console/pkg/errors"
	"agent-console/pkg/logger"
)

// respondError 按 AppError 输出错误响应，5xx 记录错误日志
func respondError(c *gin.Context, msg string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus == 0 || appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), msg, err)
	} else {
		logger.Debug(c.Request.Context(), msg, "code", string(appErr.Code), "detail", appErr.Detail)
	}
	dto.AppError(c, appErr)
}

// bindJSON 绑定请求体，失败时直接输出 400
func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		dto.AppError(c, apperrors.ErrInvalidParam.WithDetail("invalid request body: "+err.Error()))
		return false
	}
	return true
}
