package handler

import "github.com/barak121-cloud/sim-management-bh/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Slot        *SlotHandler
	Notice      *NoticeHandler
	Log         *LogHandler
	Stats       *StatsHandler
	JoinRequest *JoinRequestHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		User:        NewUserHandler(svc.User),
		Slot:        NewSlotHandler(svc.Slot),
		Notice:      NewNoticeHandler(svc.Notice),
		Log:         NewLogHandler(svc.Log),
		Stats:       NewStatsHandler(svc.Stats),
		JoinRequest: NewJoinRequestHandler(svc.JoinRequest),
		Export:      NewExportHandler(svc.Export, svc.Calendar),
	}
}
