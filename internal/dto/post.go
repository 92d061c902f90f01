package dto

import (
	"strconv"
	"time"

	"SocialServer/model"
)

// PostItem 动态条目
type PostItem struct {
	Id        string     `json:"id"`
	Author    *UserBrief `json:"author,omitempty"`
	Text      string     `json:"text"`
	Image     string     `json:"image,omitempty"`
	Video     string     `json:"video,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewPostItem 从动态模型构建条目，author 投影由调用方按需填充
func NewPostItem(post *model.Post, author *UserBrief) *PostItem {
	return &PostItem{
		Id:        strconv.FormatInt(post.Id, 10),
		Author:    author,
		Text:      post.Text,
		Image:     post.Image,
		Video:     post.Video,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}
