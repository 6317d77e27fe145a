package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/service"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// JoinRequestHandler 入会申请 HTTP 处理器
type JoinRequestHandler struct {
	joinSvc service.JoinRequestService
}

// NewJoinRequestHandler 创建 JoinRequestHandler
func NewJoinRequestHandler(joinSvc service.JoinRequestService) *JoinRequestHandler {
	return &JoinRequestHandler{joinSvc: joinSvc}
}

// Create 访客提交申请（无需登录）
// POST /api/v1/join-requests
func (h *JoinRequestHandler) Create(c *gin.Context) {
	var req dto.CreateJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	jr, err := h.joinSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.Created(c, jr)
}

// List 申请列表（管理员 / 职员）
// GET /api/v1/join-requests
func (h *JoinRequestHandler) List(c *gin.Context) {
	list, err := h.joinSvc.List(c.Request.Context())
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.OK(c, list)
}
