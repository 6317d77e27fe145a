package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/service"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// StatsHandler 教练统计 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// ListStats 教练时长明细
// GET /api/v1/instructor-stats?instructor_id=xxx
func (h *StatsHandler) ListStats(c *gin.Context) {
	stats, err := h.statsSvc.List(c.Request.Context(), c.Query("instructor_id"))
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.OK(c, stats)
}

// UpdateStats 为教练累计时长
// POST /api/v1/instructor-stats
func (h *StatsHandler) UpdateStats(c *gin.Context) {
	var req dto.UpdateInstructorStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	stat, err := h.statsSvc.UpdateInstructorStats(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotInstructor) {
			response.BadRequest(c, 14001, "该用户不是教练")
			return
		}
		handleInternal(c, err)
		return
	}

	response.OK(c, stat)
}

// Report 教练活跃度报告
// GET /api/v1/instructor-stats/report
func (h *StatsHandler) Report(c *gin.Context) {
	reports, err := h.statsSvc.InstructorReport(c.Request.Context())
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.OK(c, reports)
}
