package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/config"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
	"github.com/barak121-cloud/sim-management-bh/internal/session"
)

// ── 跨模块共用的业务错误 ──

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrAccountFrozen        = errors.New("账户已冻结，请联系管理员")
	ErrConfirmationRequired = errors.New("该操作需要确认")
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	User        UserService
	Slot        SlotService
	Stats       StatsService
	Notice      NoticeService
	Log         LogService
	JoinRequest JoinRequestService
	Export      ExportService
	Calendar    CalendarService
	Bootstrap   *Bootstrapper
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	sessions *session.Manager,
	logger *zap.Logger,
) *Service {
	userSvc := NewUserService(repo, sessions, logger)
	return &Service{
		Auth:        NewAuthService(repo, sessions, logger),
		User:        userSvc,
		Slot:        NewSlotService(repo, userSvc, logger),
		Stats:       NewStatsService(repo, logger),
		Notice:      NewNoticeService(repo, logger),
		Log:         NewLogService(repo, logger),
		JoinRequest: NewJoinRequestService(repo, logger),
		Export:      NewExportService(repo, logger),
		Calendar:    NewCalendarService(repo, logger),
		Bootstrap:   NewBootstrapper(&cfg.Seed, repo, logger),
	}
}
