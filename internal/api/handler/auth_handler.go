package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/service"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Signup 自助注册（学员或教练）
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Signup(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// Logout 用户登出，删除会话
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), sess.ID); err != nil {
		handleInternal(c, err)
		return
	}

	response.OK(c, nil)
}

// Me 当前会话中的用户
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), sess.ID)
	if err != nil {
		response.Unauthorized(c, 10002, "登录已失效，请重新登录")
		return
	}

	response.OK(c, user)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailNotRegistered):
		response.Unauthorized(c, 11001, "该邮箱尚未注册")
	case errors.Is(err, service.ErrWrongPassword):
		response.Unauthorized(c, 11002, "密码错误")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11003, "该邮箱已被注册")
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 12002, "无效的角色")
	default:
		handleInternal(c, err)
	}
}
