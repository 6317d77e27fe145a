package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/service"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// handleCommonError 处理跨模块共用的错误，已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrConfirmationRequired):
		response.PreconditionRequired(c, 10006, "该操作需要确认，请携带 confirm=true 重新提交")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrAccountFrozen):
		response.Forbidden(c, 11004, "账户已冻结，请联系管理员")
	case errors.Is(err, pkgerrors.ErrBackendUnavailable):
		response.ServiceUnavailable(c, 50300, "存储暂不可用，请稍后再试")
	default:
		return false
	}
	return true
}

// handleInternal 未识别的错误统一按 500 处理
func handleInternal(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	_ = c.Error(err)
	response.InternalError(c)
}
