package database

import (
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models 参与自动迁移的表
var Models = []interface{}{
	&model.UserProfile{},
	&model.Programme{},
	&model.Quiz{},
	&model.UserProgress{},
	&model.CommunityPost{},
	&model.UploadedFile{},
}

func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)
}

// InitDB 连接 MySQL。debug 模式或显式要求时执行自动迁移。
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(DSN(&cfg.Database)), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// 唯一索引冲突转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := db.AutoMigrate(Models...); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}
