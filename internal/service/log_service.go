package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
)

// defaultLogLimit 列表默认返回最近的 50 条
const defaultLogLimit = 50

// LogService 操作日志查询接口（日志只由业务操作追加）
type LogService interface {
	List(ctx context.Context, req *dto.LogListRequest) ([]model.LogEntry, error)
}

type logService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLogService 创建 LogService 实例
func NewLogService(repo *repository.Repository, logger *zap.Logger) LogService {
	return &logService{repo: repo, logger: logger}
}

func (s *logService) List(ctx context.Context, req *dto.LogListRequest) ([]model.LogEntry, error) {
	var (
		entries []model.LogEntry
		err     error
	)
	if req.UserID != "" {
		entries, err = s.repo.Log.ListByUser(ctx, req.UserID)
	} else {
		entries, err = s.repo.Log.List(ctx)
	}
	if err != nil {
		s.logger.Error("列出操作日志失败", zap.Error(err))
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// appendLog 追加一条操作日志。
// 业务修改已经生效，日志写入失败只记录错误，不回滚也不向调用方报错。
func appendLog(ctx context.Context, repo *repository.Repository, logger *zap.Logger, userID *string, action model.LogAction, details string) {
	entry := &model.LogEntry{UserID: userID, Action: action, Details: details}
	if err := repo.Log.Append(ctx, entry); err != nil {
		logger.Error("写入操作日志失败",
			zap.String("action", string(action)),
			zap.String("details", details),
			zap.Error(err),
		)
	}
}
