package mysql

import (
	"fmt"
	"time"

	"SocialServer/config"
	"SocialServer/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var global *gorm.DB

// DB 返回全局数据库实例（未初始化时为 nil）。
func DB() *gorm.DB { return global }

// ReplaceGlobal 设置全局数据库实例。
func ReplaceGlobal(db *gorm.DB) { global = db }

// Build 基于配置创建 gorm 实例并配置连接池。
// TranslateError 打开后，唯一键冲突会被统一翻译成 gorm.ErrDuplicatedKey，
// Repository 层依赖这一点做错误映射。
func Build(cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&model.UserInfo{},
			&model.UserRelation{},
			&model.FriendRequest{},
			&model.Message{},
			&model.Post{},
		); err != nil {
			return nil, fmt.Errorf("auto migrate failed: %w", err)
		}
	}

	return db, nil
}
