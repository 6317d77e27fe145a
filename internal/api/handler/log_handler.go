package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/service"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// LogHandler 操作日志 HTTP 处理器
type LogHandler struct {
	logSvc service.LogService
}

// NewLogHandler 创建 LogHandler
func NewLogHandler(logSvc service.LogService) *LogHandler {
	return &LogHandler{logSvc: logSvc}
}

// ListLogs 操作日志，最新的在前
// GET /api/v1/logs?limit=50&user_id=xxx
func (h *LogHandler) ListLogs(c *gin.Context) {
	var req dto.LogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	entries, err := h.logSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.OK(c, entries)
}
