package config

import (
	"fmt"
	"os"
	"time"
)

// MySQLConfig MySQL 连接配置。
type MySQLConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`

	// 连接池配置
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`

	// AutoMigrate 是否在启动时自动建表（仅建议本地开发开启）
	AutoMigrate bool `json:"autoMigrate" yaml:"autoMigrate"`
}

// DSN 拼接 gorm mysql 驱动使用的连接串。
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// DefaultMySQLConfig 返回本地开发的默认配置（与 docker-compose 对齐）。
func DefaultMySQLConfig() MySQLConfig {
	cfg := MySQLConfig{
		Host:            "127.0.0.1",
		Port:            3306,
		User:            "root",
		Password:        "root",
		Database:        "socialserver",
		MaxOpenConns:    100,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
	}
	if host := os.Getenv("MYSQL_HOST"); host != "" {
		cfg.Host = host
	}
	if user := os.Getenv("MYSQL_USER"); user != "" {
		cfg.User = user
	}
	if pwd := os.Getenv("MYSQL_PASSWORD"); pwd != "" {
		cfg.Password = pwd
	}
	if db := os.Getenv("MYSQL_DATABASE"); db != "" {
		cfg.Database = db
	}
	return cfg
}
