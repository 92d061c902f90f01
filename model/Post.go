package model

import (
	"time"

	"gorm.io/gorm"
)

// Post 动态表
// 文本与媒体至少要有一项；媒体以对象存储的公开 URL 形式落库。
type Post struct {
	Id       int64  `gorm:"column:id;primaryKey;comment:动态id(雪花)"`
	UserUuid string `gorm:"column:user_uuid;type:char(36);not null;index:idx_user_created;comment:作者uuid"`

	Text  string `gorm:"column:text;type:varchar(5000);comment:动态文本"`
	Image string `gorm:"column:image;type:varchar(256);comment:图片URL"`
	Video string `gorm:"column:video;type:varchar(256);comment:视频URL"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime;index:idx_user_created"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Post) TableName() string { return "post" }
