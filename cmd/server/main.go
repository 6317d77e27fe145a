package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/config"
	"github.com/barak121-cloud/sim-management-bh/internal/api/handler"
	"github.com/barak121-cloud/sim-management-bh/internal/api/middleware"
	"github.com/barak121-cloud/sim-management-bh/internal/api/router"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
	"github.com/barak121-cloud/sim-management-bh/internal/service"
	"github.com/barak121-cloud/sim-management-bh/internal/session"
	"github.com/barak121-cloud/sim-management-bh/pkg/database"
	"github.com/barak121-cloud/sim-management-bh/pkg/jwt"
	"github.com/barak121-cloud/sim-management-bh/pkg/kv"
	applogger "github.com/barak121-cloud/sim-management-bh/pkg/logger"
	"github.com/barak121-cloud/sim-management-bh/pkg/redis"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("remote", cfg.Backend.Remote),
		zap.String("mirror", cfg.Backend.Mirror),
	)

	// 需要在退出时关闭的连接
	var closers []io.Closer

	// 3. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，限流功能将不可用", zap.Error(err))
		rdb = nil
	} else {
		closers = append(closers, rdb)
	}

	// 4. 本地镜像
	store, err := openMirror(cfg, rdb, logger)
	if err != nil {
		logger.Fatal("打开本地镜像失败", zap.Error(err))
	}
	if c, ok := store.(io.Closer); ok && c != io.Closer(rdb) {
		closers = append(closers, c)
	}

	// 5. 远程表服务
	remote, closeRemote, err := openRemote(cfg, logger)
	if err != nil {
		logger.Fatal("连接远程表服务失败", zap.Error(err))
	}
	if closeRemote != nil {
		closers = append(closers, closeRemote)
	}

	backend := tablestore.NewFallback(remote, tablestore.NewMirror(store, cfg.Backend.KeyPrefix), logger)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(backend)
	sessions := session.NewManager(store, jwt.NewManager(&cfg.Auth), cfg.Backend.KeyPrefix)
	svc := service.NewService(cfg, repo, sessions, logger)
	h := handler.NewHandler(svc)

	// 6.1 空库初始化
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Bootstrap.Run(bootCtx); err != nil {
		logger.Warn("初始化数据失败", zap.Error(err))
	}
	bootCancel()

	// 7. 初始化路由
	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}
	engine := router.Setup(cfg, h, sessions, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("关闭连接失败", zap.Error(err))
		}
	}

	logger.Info("服务器已关闭")
}

// openMirror 按 backend.mirror 选择本地镜像的键值存储
func openMirror(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (kv.Store, error) {
	switch cfg.Backend.Mirror {
	case config.MirrorRedis:
		if rdb == nil {
			return nil, fmt.Errorf("backend.mirror=redis 但 Redis 不可用")
		}
		return rdb, nil
	case config.MirrorMemory:
		logger.Warn("本地镜像使用内存存储，重启后数据丢失")
		return kv.NewMemory(), nil
	default:
		return kv.OpenSQLite(cfg.SQLite.Path, logger)
	}
}

// openRemote 按 backend.remote 选择远程表服务；none 时返回 nil（只使用本地镜像）
func openRemote(cfg *config.Config, logger *zap.Logger) (tablestore.Backend, io.Closer, error) {
	switch cfg.Backend.Remote {
	case config.RemotePostgREST:
		logger.Info("远程表服务: PostgREST", zap.String("url", cfg.PostgREST.URL))
		return tablestore.NewPostgREST(cfg.PostgREST.URL, cfg.PostgREST.APIKey, cfg.PostgREST.Timeout), nil, nil

	case config.RemotePostgres:
		db, err := database.NewDB(&cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		logger.Info("远程表服务: PostgreSQL")
		return tablestore.NewGorm(db), sqlDB, nil
	}

	logger.Info("未配置远程表服务，仅使用本地镜像")
	return nil, nil, nil
}
