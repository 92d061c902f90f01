package model

import (
	"time"
)

const (
	// FriendRequestPending 待处理
	FriendRequestPending int8 = 0
	// FriendRequestAccepted 已同意（终态）
	FriendRequestAccepted int8 = 1
	// FriendRequestRejected 已拒绝（终态）
	FriendRequestRejected int8 = 2
)

// FriendRequest 好友申请表
// 状态机：pending -> accepted / pending -> rejected，两个终态都不可再变。
// "同一对用户最多一条 pending" 由 Service 层先查后插保证，
// 唯一索引只兜底完全相同 (from,to) 的重复行：同一对用户的历史已处理行允许存在。
type FriendRequest struct {
	Id       int64  `gorm:"column:id;primaryKey;comment:申请id(雪花)"`
	FromUuid string `gorm:"column:from_uuid;type:char(36);not null;index:idx_from_status;comment:申请人uuid"`
	ToUuid   string `gorm:"column:to_uuid;type:char(36);not null;index:idx_to_status;comment:接收人uuid"`
	Status   int8   `gorm:"column:status;not null;default:0;index:idx_from_status;index:idx_to_status;comment:状态 0待处理 1已同意 2已拒绝"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (FriendRequest) TableName() string { return "friend_request" }
