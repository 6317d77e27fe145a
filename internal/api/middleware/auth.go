package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/session"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// 上下文键
const (
	CtxSession   = "session"
	CtxSessionID = "session_id"
	CtxUserID    = "user_id"
	CtxRole      = "role"
)

// SessionAuth 会话认证中间件
// 从 Authorization: Bearer <token> 中提取令牌，解析出会话并注入上下文
func SessionAuth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		sess, err := sessions.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "登录已失效，请重新登录")
			c.Abort()
			return
		}

		c.Set(CtxSession, sess)
		c.Set(CtxSessionID, sess.ID)
		c.Set(CtxUserID, sess.User.ID)
		c.Set(CtxRole, string(sess.User.Role))

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(CtxRole)
		if userRole == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
