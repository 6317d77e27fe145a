package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
)

// JoinRequestService 入会申请接口
type JoinRequestService interface {
	Create(ctx context.Context, req *dto.CreateJoinRequest) (*model.JoinRequest, error)
	List(ctx context.Context) ([]model.JoinRequest, error)
}

type joinRequestService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewJoinRequestService 创建 JoinRequestService 实例
func NewJoinRequestService(repo *repository.Repository, logger *zap.Logger) JoinRequestService {
	return &joinRequestService{repo: repo, logger: logger}
}

func (s *joinRequestService) Create(ctx context.Context, req *dto.CreateJoinRequest) (*model.JoinRequest, error) {
	jr := &model.JoinRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Message: req.Message,
		Status:  model.JoinRequestPending,
	}
	if err := s.repo.JoinRequest.Create(ctx, jr); err != nil {
		s.logger.Error("创建入会申请失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("收到入会申请", zap.String("join_request_id", jr.ID))
	return jr, nil
}

func (s *joinRequestService) List(ctx context.Context) ([]model.JoinRequest, error) {
	list, err := s.repo.JoinRequest.List(ctx)
	if err != nil {
		s.logger.Error("列出入会申请失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}
