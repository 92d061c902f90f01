package model

import (
	"time"
)

// UserRelation 好友关系边（单向行）。
// 一段对称好友关系由两行组成：A->B 与 B->A，分别由两次幂等 Upsert 写入。
// 约束：uniqueIndex:uidx_user_peer 确保同一对用户不重复。
type UserRelation struct {
	Id       int64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	UserUuid string `gorm:"column:user_uuid;type:char(36);not null;uniqueIndex:uidx_user_peer;index:idx_user_created;comment:用户uuid"`
	PeerUuid string `gorm:"column:peer_uuid;type:char(36);not null;index;uniqueIndex:uidx_user_peer;comment:好友uuid"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_user_created"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserRelation) TableName() string { return "user_relation" }
