package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/config"
	"github.com/redmac135/banshee-training/internal/api/handler"
	"github.com/redmac135/banshee-training/internal/api/router"
	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
	"github.com/redmac135/banshee-training/internal/service"
	"github.com/redmac135/banshee-training/pkg/database"
	"github.com/redmac135/banshee-training/pkg/jwt"
	applogger "github.com/redmac135/banshee-training/pkg/logger"
	"github.com/redmac135/banshee-training/pkg/mail"
	"github.com/redmac135/banshee-training/pkg/metrics"
	"github.com/redmac135/banshee-training/pkg/redis"
	"github.com/redmac135/banshee-training/pkg/storage"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "配置文件路径（默认 ./config/config.yaml）")
	pflag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
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
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}

	// 3. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.Database.Driver, logger, model.AllModels()...); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与登录限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 外部依赖
	infra := service.Infra{
		Mailer: mail.NewSender(&cfg.Mail, logger),
	}
	if rdb != nil {
		infra.Blacklist = rdb
	}
	if cfg.Storage.Enabled {
		store, err := storage.NewS3Store(&cfg.Storage, logger)
		if err != nil {
			logger.Fatal("初始化教案文件存储失败", zap.Error(err))
		}
		infra.Storage = store
	}
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		infra.Metrics = m
	}

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, infra, logger)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Level.SeedDefaults(seedCtx); err != nil {
		logger.Fatal("初始化级别目录失败", zap.Error(err))
	}
	seedCancel()

	h := handler.NewHandler(svc, handler.Options{
		Cookie: &handler.CookieOptions{
			Path:   "/api/v1/auth",
			Secure: strings.HasPrefix(cfg.Server.BaseURL, "https://"),
			MaxAge: int(cfg.Auth.RefreshTokenTTLRemember.Seconds()),
		},
		MaxUploadBytes: cfg.Storage.MaxSizeMB << 20,
	})

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, m, repo.Ping, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	// 关闭数据库连接
	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
