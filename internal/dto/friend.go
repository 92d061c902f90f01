package dto

import (
	"strconv"
	"time"

	"SocialServer/model"
)

// SendFriendRequestReq 发送好友申请
type SendFriendRequestReq struct {
	ToUuid string `json:"toUuid" binding:"required,uuid"`
}

// FriendshipStatus 好友关系查询结果
type FriendshipStatus struct {
	IsFriend bool `json:"isFriend"`
}

// FriendRequestItem 好友申请条目。
// id 是雪花 id，序列化为字符串避免前端 JS 精度丢失。
type FriendRequestItem struct {
	Id        string     `json:"id"`
	From      *UserBrief `json:"from,omitempty"`
	To        *UserBrief `json:"to,omitempty"`
	Status    int8       `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewFriendRequestItem 构建好友申请条目，from/to 投影由调用方按需填充
func NewFriendRequestItem(req *model.FriendRequest, from, to *UserBrief) *FriendRequestItem {
	return &FriendRequestItem{
		Id:        strconv.FormatInt(req.Id, 10),
		From:      from,
		To:        to,
		Status:    req.Status,
		CreatedAt: req.CreatedAt,
	}
}
