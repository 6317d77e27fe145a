package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
	"github.com/barak121-cloud/sim-management-bh/internal/session"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrInvalidRole        = errors.New("无效的角色")
	ErrInvalidStatus      = errors.New("无效的状态，冻结请使用冻结操作")
	ErrInvalidLesson      = errors.New("课程编号必须在 1-10 之间")
	ErrStrikesOutstanding = errors.New("缺席次数已达上限，请使用解冻操作")
)

// UserService 用户业务接口
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	// UpdateProfile 用户修改自己的资料，并刷新会话快照
	UpdateProfile(ctx context.Context, sessionID, userID string, req *dto.UpdateProfileRequest) (*model.User, error)
	AdminUpdate(ctx context.Context, id string, req *dto.AdminUpdateUserRequest) (*model.User, error)

	// IncrementNoShow 记一次缺席，达到 3 次自动冻结
	IncrementNoShow(ctx context.Context, id string) (*model.User, error)
	// RemoveNoShowStrike 撤销一次缺席；次数为 0 时不做任何修改
	RemoveNoShowStrike(ctx context.Context, id, reason, notes string, confirmed bool) (*model.User, error)
	// Unfreeze 管理员解冻：状态恢复 active，缺席次数清零
	Unfreeze(ctx context.Context, id string, confirmed bool) (*model.User, error)
	// Freeze 管理员手动冻结
	Freeze(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	repo     *repository.Repository
	sessions *session.Manager
	logger   *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, sessions *session.Manager, logger *zap.Logger) UserService {
	return &userService{repo: repo, sessions: sessions, logger: logger}
}

// ────────────────────── 查询 ──────────────────────

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return loadUser(ctx, s.repo, s.logger, id)
}

// loadUser 按 ID 读取用户，不存在时返回 ErrUserNotFound
func loadUser(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.User, error) {
	user, err := repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("查询用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// ────────────────────── 资料修改 ──────────────────────

func (s *userService) UpdateProfile(ctx context.Context, sessionID, userID string, req *dto.UpdateProfileRequest) (*model.User, error) {
	var patch model.UserPatch
	if req.Name != nil {
		patch.Name = model.Val(strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		existing, err := s.repo.User.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != userID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, pkgerrors.ErrNotFound):
			s.logger.Error("查询用户失败", zap.Error(err))
			return nil, err
		}
		patch.Email = model.Val(email)
	}
	if req.Phone != nil {
		patch.Phone = model.Val(strings.TrimSpace(*req.Phone))
	}
	if req.Age != nil {
		patch.Age = model.Val(req.Age)
	}
	if req.Background != nil {
		patch.Background = model.Val(*req.Background)
	}

	updated, err := s.update(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Refresh(ctx, sessionID, *updated); err != nil {
		s.logger.Warn("刷新会话快照失败", zap.String("session_id", sessionID), zap.Error(err))
	}
	return updated, nil
}

func (s *userService) AdminUpdate(ctx context.Context, id string, req *dto.AdminUpdateUserRequest) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var patch model.UserPatch
	if req.Role != nil {
		role := model.Role(*req.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		patch.Role = model.Val(role)
	}
	if req.Status != nil {
		status := model.UserStatus(*req.Status)
		if !status.Valid() || status == model.StatusFrozen {
			return nil, ErrInvalidStatus
		}
		if user.NoShowCount >= model.FreezeThreshold {
			return nil, ErrStrikesOutstanding
		}
		patch.Status = model.Val(status)
	}
	if req.CurrentLesson != nil {
		if !model.ValidLesson(*req.CurrentLesson) {
			return nil, ErrInvalidLesson
		}
		patch.CurrentLesson = model.Val(*req.CurrentLesson)
	}

	updated, err := s.update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.syncSessions(ctx, updated)
	return updated, nil
}

// ────────────────────── 缺席与冻结 ──────────────────────

func (s *userService) IncrementNoShow(ctx context.Context, id string) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count := user.NoShowCount + 1
	patch := model.UserPatch{NoShowCount: model.Val(count)}
	if count >= model.FreezeThreshold {
		patch.Status = model.Val(model.StatusFrozen)
	}

	updated, err := s.update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("פסילה מספר %d", count)
	if count >= model.FreezeThreshold {
		details += " - החשבון הוקפא"
	}
	appendLog(ctx, s.repo, s.logger, &updated.ID, model.ActionNoShow, details)
	s.syncSessions(ctx, updated)

	return updated, nil
}

func (s *userService) RemoveNoShowStrike(ctx context.Context, id, reason, notes string, confirmed bool) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.NoShowCount <= 0 {
		return user, nil
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	count := user.NoShowCount - 1
	patch := model.UserPatch{NoShowCount: model.Val(count)}
	if user.IsFrozen() && count < model.FreezeThreshold {
		patch.Status = model.Val(model.StatusActive)
	}

	updated, err := s.update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	details := strings.TrimSpace(fmt.Sprintf("הוסרה פסילה. סיבה: %s. %s", reason, notes))
	appendLog(ctx, s.repo, s.logger, &updated.ID, model.ActionNoShowRemoved, details)
	s.syncSessions(ctx, updated)

	return updated, nil
}

func (s *userService) Unfreeze(ctx context.Context, id string, confirmed bool) (*model.User, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	updated, err := s.update(ctx, id, model.UserPatch{
		Status:      model.Val(model.StatusActive),
		NoShowCount: model.Val(0),
	})
	if err != nil {
		return nil, err
	}
	s.syncSessions(ctx, updated)
	return updated, nil
}

func (s *userService) Freeze(ctx context.Context, id string) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsFrozen() {
		return user, nil
	}

	updated, err := s.update(ctx, id, model.UserPatch{Status: model.Val(model.StatusFrozen)})
	if err != nil {
		return nil, err
	}
	appendLog(ctx, s.repo, s.logger, &updated.ID, model.ActionAccountFrozen, "החשבון הוקפא על ידי מנהל")
	s.syncSessions(ctx, updated)
	return updated, nil
}

func (s *userService) update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	updated, err := s.repo.User.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("更新用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

// syncSessions 管理员修改角色、状态或缺席次数后，刷新该用户所有在线会话的快照
func (s *userService) syncSessions(ctx context.Context, user *model.User) {
	if err := s.sessions.RefreshUser(ctx, *user); err != nil {
		s.logger.Warn("刷新用户会话失败", zap.String("user_id", user.ID), zap.Error(err))
	}
}
