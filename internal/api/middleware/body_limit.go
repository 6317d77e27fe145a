package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// BodyLimit 限制请求体大小
// 声明了 Content-Length 的超限请求直接返回 413；分块传输的请求在读取超限时由绑定失败返回 400
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
