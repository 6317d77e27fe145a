package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
	"github.com/barak121-cloud/sim-management-bh/internal/session"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
)

// ── 认证模块业务错误 ──
// 登录失败不写操作日志

var (
	ErrEmailNotRegistered = errors.New("该邮箱尚未注册")
	ErrWrongPassword      = errors.New("密码错误")
	ErrEmailTaken         = errors.New("该邮箱已被注册")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, sessionID string) error
	// Me 返回会话中的用户快照
	Me(ctx context.Context, sessionID string) (*model.User, error)
}

type authService struct {
	repo     *repository.Repository
	sessions *session.Manager
	logger   *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(repo *repository.Repository, sessions *session.Manager, logger *zap.Logger) AuthService {
	return &authService{repo: repo, sessions: sessions, logger: logger}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrEmailNotRegistered
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrWrongPassword
	}

	// 3. 冻结账户不能登录
	if user.IsFrozen() {
		return nil, ErrAccountFrozen
	}

	return s.open(ctx, user)
}

// ────────────────────── Signup ──────────────────────

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.TokenResponse, error) {
	role := model.Role(req.Role)
	if role != model.RoleTrainee && !role.IsInstructor() {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pkgerrors.ErrNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("生成密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		Age:          req.Age,
		Role:         role,
		Background:   req.Background,
		PasswordHash: string(hash),
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("新用户注册", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.open(ctx, user)
}

func (s *authService) open(ctx context.Context, user *model.User) (*dto.TokenResponse, error) {
	_, token, err := s.sessions.Open(ctx, *user)
	if err != nil {
		s.logger.Error("建立会话失败", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.sessions.TTL().Seconds()),
		User:        *user,
	}, nil
}

// ────────────────────── Logout / Me ──────────────────────

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Close(ctx, sessionID); err != nil {
		s.logger.Error("删除会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, sessionID string) (*model.User, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &sess.User, nil
}
