// banshee-admin 运维命令行工具
//
// 用法:
//
//	banshee-admin [-c config.yaml] permission --username <用户名> --level <1-4>
//	banshee-admin [-c config.yaml] seed-levels
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/redmac135/banshee-training/config"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
	"github.com/redmac135/banshee-training/internal/service"
	"github.com/redmac135/banshee-training/pkg/database"
	"github.com/redmac135/banshee-training/pkg/jwt"
	applogger "github.com/redmac135/banshee-training/pkg/logger"
	"github.com/redmac135/banshee-training/pkg/mail"
)

const usage = `用法: banshee-admin [-c 配置文件] <命令> [参数]

命令:
  permission   设置用户权限等级（--username, --level）
  seed-levels  写入默认级别目录
`

func main() {
	global := pflag.NewFlagSet("banshee-admin", pflag.ExitOnError)
	configPath := global.StringP("config", "c", "", "配置文件路径")
	global.SetInterspersed(false)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	svc, db, logger := bootstrap(*configPath)
	defer func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
		logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var err error
	switch args[0] {
	case "permission":
		err = runPermission(ctx, svc, args[1:])
	case "seed-levels":
		err = svc.Level.SeedDefaults(ctx)
		if err == nil {
			fmt.Println("默认级别已写入")
		}
	default:
		global.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s 失败: %v\n", args[0], err)
		os.Exit(1)
	}
}

func runPermission(ctx context.Context, svc *service.Service, args []string) error {
	fs := pflag.NewFlagSet("permission", pflag.ExitOnError)
	username := fs.StringP("username", "u", "", "用户名")
	level := fs.IntP("level", "l", 0, "权限等级：1 教官 / 2 训练主管 / 3 军官 / 4 管理员")
	_ = fs.Parse(args)

	if *username == "" {
		return fmt.Errorf("--username 不能为空")
	}
	if *level < model.PermissionInstructor || *level > model.PermissionAdmin {
		return fmt.Errorf("--level 必须在 %d 到 %d 之间", model.PermissionInstructor, model.PermissionAdmin)
	}

	senior, err := svc.Senior.SetPermissionByUsername(ctx, *username, *level)
	if err != nil {
		return err
	}
	fmt.Printf("%s 的权限等级已设置为 %d（%s）\n", senior.Username, senior.PermissionLevel, model.RoleForPermission(senior.PermissionLevel))
	return nil
}

// bootstrap 与 server 共用配置与数据库，不连接 Redis / 对象存储
func bootstrap(configPath string) (*service.Service, *gorm.DB, *zap.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.Database.Driver, logger, model.AllModels()...); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	svc := service.NewService(cfg, repository.NewRepository(db), jwt.NewManager(&cfg.Auth), service.Infra{
		Mailer: mail.NewLogSender(cfg.Mail.From, logger),
	}, logger)
	return svc, db, logger
}

// [自证通过] cmd/banshee-admin/main.go
