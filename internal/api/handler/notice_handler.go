package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/service"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// NoticeHandler 公告 HTTP 处理器
type NoticeHandler struct {
	noticeSvc service.NoticeService
}

// NewNoticeHandler 创建 NoticeHandler
func NewNoticeHandler(noticeSvc service.NoticeService) *NoticeHandler {
	return &NoticeHandler{noticeSvc: noticeSvc}
}

// ListNotices 公告列表，最新的在前
// GET /api/v1/notices
func (h *NoticeHandler) ListNotices(c *gin.Context) {
	notices, err := h.noticeSvc.List(c.Request.Context())
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.OK(c, notices)
}

// CreateNotice 发布公告（管理员）
// POST /api/v1/notices
func (h *NoticeHandler) CreateNotice(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	notice, err := h.noticeSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleNoticeError(c, err)
		return
	}

	response.Created(c, notice)
}

// DeleteNotice 删除公告（管理员）
// DELETE /api/v1/notices/:id
func (h *NoticeHandler) DeleteNotice(c *gin.Context) {
	confirmed, ok := bindConfirm(c)
	if !ok {
		return
	}

	if err := h.noticeSvc.Delete(c.Request.Context(), c.Param("id"), confirmed); err != nil {
		h.handleNoticeError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *NoticeHandler) handleNoticeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoticeNotFound):
		response.NotFound(c, 15001, "公告不存在")
	case errors.Is(err, service.ErrNoticeEmpty):
		response.BadRequest(c, 15002, "公告内容不能为空")
	default:
		handleInternal(c, err)
	}
}
