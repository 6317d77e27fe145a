package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/barak121-cloud/sim-management-bh/config"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
)

// Bootstrapper 空库初始化：创建管理员与欢迎公告
type Bootstrapper struct {
	seed   *config.SeedConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBootstrapper 创建 Bootstrapper
func NewBootstrapper(seed *config.SeedConfig, repo *repository.Repository, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{seed: seed, repo: repo, logger: logger}
}

// Run 用户表为空时写入初始数据；已有用户时不做任何事。
// 未配置管理员邮箱或密码时跳过管理员，只写欢迎公告。
func (b *Bootstrapper) Run(ctx context.Context) error {
	users, err := b.repo.User.List(ctx)
	if err != nil {
		b.logger.Error("初始化时读取用户失败", zap.Error(err))
		return err
	}
	if len(users) > 0 {
		return nil
	}

	var authorID *string
	if b.seed.AdminEmail != "" && b.seed.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(b.seed.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &model.User{
			Name:         b.seed.AdminName,
			Email:        b.seed.AdminEmail,
			Role:         model.RoleAdmin,
			PasswordHash: string(hash),
		}
		if err := b.repo.User.Create(ctx, admin); err != nil {
			b.logger.Error("创建初始管理员失败", zap.Error(err))
			return err
		}
		authorID = &admin.ID
		b.logger.Info("已创建初始管理员", zap.String("email", admin.Email))
	} else {
		b.logger.Warn("未配置初始管理员账号，跳过创建")
	}

	if content := strings.TrimSpace(b.seed.WelcomeNotice); content != "" {
		notice := &model.Notice{Content: content, CreatedBy: authorID}
		if err := b.repo.Notice.Create(ctx, notice); err != nil {
			b.logger.Error("创建欢迎公告失败", zap.Error(err))
			return err
		}
	}
	return nil
}
