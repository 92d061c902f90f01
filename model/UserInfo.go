package model

import (
	"time"

	"gorm.io/gorm"
)

// UserInfo 用户信息表
// 用户只通过 Google OAuth 创建或按邮箱匹配补录，业务范围内不删除。
// 注意：is_online 是持久化的在线状态，进程重启后以此为准；
// 内存里的连接注册表只决定投递，不是在线状态的权威来源。
type UserInfo struct {
	Id   int64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	Uuid string `gorm:"column:uuid;type:char(36);not null;uniqueIndex;comment:用户uuid"`

	Name  string `gorm:"column:name;type:varchar(64);not null;comment:显示名"`
	Email string `gorm:"column:email;type:varchar(128);not null;uniqueIndex;comment:邮箱"`

	// Google 账号绑定。按邮箱匹配到已有用户时回填。
	GoogleId string `gorm:"column:google_id;type:varchar(64);uniqueIndex;comment:Google账号id"`

	Avatar string `gorm:"column:avatar;type:varchar(256);comment:头像URL"`

	// 在线状态
	IsOnline bool      `gorm:"column:is_online;not null;default:0;comment:是否在线"`
	LastSeen time.Time `gorm:"column:last_seen;comment:最近在线时间"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (UserInfo) TableName() string { return "user_info" }
