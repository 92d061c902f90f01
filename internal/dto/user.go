package dto

import (
	"time"

	"SocialServer/model"
)

// UserBrief 用户对外展示投影。
// lastSeen 仅在离线时有意义，零值时序列化省略。
type UserBrief struct {
	Uuid     string     `json:"uuid"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Avatar   string     `json:"avatar"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// NewUserBrief 从用户模型构建投影
func NewUserBrief(u *model.UserInfo) *UserBrief {
	brief := &UserBrief{
		Uuid:     u.Uuid,
		Name:     u.Name,
		Email:    u.Email,
		Avatar:   u.Avatar,
		IsOnline: u.IsOnline,
	}
	if !u.LastSeen.IsZero() {
		lastSeen := u.LastSeen
		brief.LastSeen = &lastSeen
	}
	return brief
}

// NewUserBriefs 批量构建投影
func NewUserBriefs(users []*model.UserInfo) []*UserBrief {
	briefs := make([]*UserBrief, 0, len(users))
	for _, u := range users {
		briefs = append(briefs, NewUserBrief(u))
	}
	return briefs
}

// LoginResult 登录成功的返回
type LoginResult struct {
	Token string     `json:"token"`
	User  *UserBrief `json:"user"`
}
