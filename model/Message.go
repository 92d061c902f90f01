package model

import (
	"time"
)

// Message 私信表
// 创建后不可变，唯一的例外是接收方拉取会话时翻转已读状态（is_read/read_at）。
type Message struct {
	Id           int64  `gorm:"column:id;primaryKey;comment:消息id(雪花)"`
	SenderUuid   string `gorm:"column:sender_uuid;type:char(36);not null;index:idx_pair;comment:发送方uuid"`
	ReceiverUuid string `gorm:"column:receiver_uuid;type:char(36);not null;index:idx_pair;index:idx_receiver_read;comment:接收方uuid"`

	Text string `gorm:"column:text;type:varchar(1000);not null;comment:消息文本"`

	IsRead bool       `gorm:"column:is_read;not null;default:0;index:idx_receiver_read;comment:是否已读"`
	ReadAt *time.Time `gorm:"column:read_at;comment:已读时间"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (Message) TableName() string { return "message" }
