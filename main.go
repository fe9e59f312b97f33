// @title FAAQS 后端 API
// @version 1.0
// @description 法语区备考平台 FAAQS：限时测验、成绩与进度、学员社区及后台审核。
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"faaqs_backend/internal/app"
	"faaqs_backend/internal/config"
	"faaqs_backend/pkg/logger"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
)

type flags struct {
	configDir   string
	migrate     bool
	migrateOnly bool
	createAdmin bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configDir, "config", "configs", "配置文件目录（含 config.yaml）")
	flag.BoolVar(&f.migrate, "migrate", false, "release 模式下也执行 AutoMigrate")
	flag.BoolVar(&f.migrateOnly, "migrate-only", false, "迁移后立即退出")
	flag.BoolVar(&f.createAdmin, "create-admin", false, "按 admin 配置段创建管理员账号")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	cfg, err := config.LoadConfig(f.configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg.ForceMigrate = f.migrate || f.migrateOnly
	cfg.MigrateOnly = f.migrateOnly
	cfg.CreateAdmin = f.createAdmin

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if f.migrateOnly {
		logger.Log.Info("migration finished, exiting", zap.String("driver", cfg.Database.Driver))
		return
	}
	application.Run()
}
