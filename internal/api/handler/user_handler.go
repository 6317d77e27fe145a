package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/service"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetCurrentUser 获取当前用户的最新记录
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateCurrentUser 修改自己的资料
// PUT /api/v1/users/me
func (h *UserHandler) UpdateCurrentUser(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), sess.ID, sess.User.ID, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// ListUsers 用户列表（管理员 / 职员）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.OK(c, users)
}

// GetUser 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateUser 管理员修改角色、状态或当前课程
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.AdminUpdate(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// AddNoShow 记一次缺席
// POST /api/v1/users/:id/no-shows
func (h *UserHandler) AddNoShow(c *gin.Context) {
	user, err := h.userSvc.IncrementNoShow(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// RemoveNoShow 撤销一次缺席
// DELETE /api/v1/users/:id/no-shows
func (h *UserHandler) RemoveNoShow(c *gin.Context) {
	var req dto.RemoveStrikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.RemoveNoShowStrike(c.Request.Context(), c.Param("id"), req.Reason, req.Notes, req.Confirm)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// Freeze 手动冻结
// POST /api/v1/users/:id/freeze
func (h *UserHandler) Freeze(c *gin.Context) {
	user, err := h.userSvc.Freeze(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// Unfreeze 解冻并清零缺席次数
// POST /api/v1/users/:id/unfreeze
func (h *UserHandler) Unfreeze(c *gin.Context) {
	confirmed, ok := bindConfirm(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Unfreeze(c.Request.Context(), c.Param("id"), confirmed)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 12002, "无效的角色")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 12003, "无效的状态，冻结请使用冻结操作")
	case errors.Is(err, service.ErrInvalidLesson):
		response.BadRequest(c, 12004, "课程编号必须在 1-10 之间")
	case errors.Is(err, service.ErrStrikesOutstanding):
		response.Conflict(c, 12005, "缺席次数已达上限，请使用解冻操作")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11003, "该邮箱已被注册")
	default:
		handleInternal(c, err)
	}
}

// bindConfirm 读取可选的 {"confirm": true} 请求体或 ?confirm=true
func bindConfirm(c *gin.Context) (bool, bool) {
	var req dto.ConfirmRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return false, false
		}
	}
	return req.Confirm || c.Query("confirm") == "true", true
}
