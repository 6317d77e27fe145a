package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/api/middleware"
	"github.com/barak121-cloud/sim-management-bh/internal/session"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// MustGetSession 从 Gin 上下文中安全提取会话。
// 如果认证中间件未正确注入会话，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(middleware.CtxSession)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	s, ok := v.(*session.Session)
	if !ok || s == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return s, true
}

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
func MustGetUserID(c *gin.Context) (string, bool) {
	s, ok := MustGetSession(c)
	if !ok {
		return "", false
	}
	return s.User.ID, true
}
