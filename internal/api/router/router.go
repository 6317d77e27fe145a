package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/config"
	"github.com/barak121-cloud/sim-management-bh/internal/api/handler"
	"github.com/barak121-cloud/sim-management-bh/internal/api/middleware"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/session"
)

// 登录 / 注册限流：每个 IP 每分钟 10 次
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

var (
	admin       = string(model.RoleAdmin)
	staff       = string(model.RoleStaff)
	instSenior  = string(model.RoleInstructorSenior)
	instJunior  = string(model.RoleInstructorJunior)
	management  = []string{admin, staff}
	instructors = []string{admin, instSenior, instJunior}
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时不限流
func Setup(cfg *config.Config, h *handler.Handler, sessions *session.Manager, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 无需认证
		authLimit := middleware.RateLimit(limiter, authRateLimit, authRateWindow)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authLimit, h.Auth.Login)
			auth.POST("/signup", authLimit, h.Auth.Signup)
		}
		v1.POST("/join-requests", authLimit, h.JoinRequest.Create)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.SessionAuth(sessions))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			authorized.GET("/join-requests", middleware.RoleAuth(management...), h.JoinRequest.List)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.PUT("/me", h.User.UpdateCurrentUser)
				users.GET("", middleware.RoleAuth(management...), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth(management...), h.User.GetUser)
				users.PUT("/:id", middleware.RoleAuth(admin), h.User.UpdateUser)
				users.POST("/:id/no-shows", middleware.RoleAuth(admin), h.User.AddNoShow)
				users.DELETE("/:id/no-shows", middleware.RoleAuth(admin), h.User.RemoveNoShow)
				users.POST("/:id/freeze", middleware.RoleAuth(admin), h.User.Freeze)
				users.POST("/:id/unfreeze", middleware.RoleAuth(admin), h.User.Unfreeze)
			}

			// 时段模块
			slots := authorized.Group("/slots")
			{
				slots.GET("", h.Slot.ListSlots)
				slots.GET("/available", middleware.RoleAuth(admin), h.Slot.ListAvailable)
				slots.GET("/:id", h.Slot.GetSlot)
				slots.POST("", middleware.RoleAuth(admin), h.Slot.CreateTrainingDay)
				slots.DELETE("/:id", middleware.RoleAuth(admin), h.Slot.DeleteSlot)
				slots.POST("/:id/fast-track", middleware.RoleAuth(admin), h.Slot.FastTrack)
				slots.POST("/:id/register/:seat", h.Slot.Register)
				slots.POST("/:id/cancel", h.Slot.CancelRegistration)
				slots.PUT("/:id/notes", middleware.RoleAuth(instructors...), h.Slot.UpdateNotes)
				slots.POST("/:id/attendance", middleware.RoleAuth(instructors...), h.Slot.MarkAttendance)
			}

			// 公告模块
			notices := authorized.Group("/notices")
			{
				notices.GET("", h.Notice.ListNotices)
				notices.POST("", middleware.RoleAuth(admin), h.Notice.CreateNotice)
				notices.DELETE("/:id", middleware.RoleAuth(admin), h.Notice.DeleteNotice)
			}

			// 操作日志
			authorized.GET("/logs", middleware.RoleAuth(management...), h.Log.ListLogs)

			// 教练统计
			stats := authorized.Group("/instructor-stats", middleware.RoleAuth(management...))
			{
				stats.GET("", h.Stats.ListStats)
				stats.POST("", h.Stats.UpdateStats)
				stats.GET("/report", h.Stats.Report)
			}

			// 导出模块
			export := authorized.Group("/export", middleware.RoleAuth(management...))
			{
				export.GET("/csv", h.Export.ExportCSV)
				export.GET("/xlsx", h.Export.ExportXLSX)
			}

			authorized.GET("/calendar/me.ics", h.Export.MyCalendar)
		}
	}

	return r
}
