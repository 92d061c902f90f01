package service

import (
	"context"
	"io"

	"SocialServer/internal/dto"
)

// IAuthService 认证服务接口
type IAuthService interface {
	// Enabled 返回 Google 登录功能是否可用（启动时凭据校验失败则禁用）
	Enabled() bool
	// AuthCodeURL 生成 Google 授权页跳转 URL
	AuthCodeURL(state string) (string, error)
	// LoginWithGoogle 用授权码完成登录：换取资料、匹配或创建用户、签发 Token
	LoginWithGoogle(ctx context.Context, code string) (*dto.LoginResult, error)
	// GetProfile 查询当前用户资料
	GetProfile(ctx context.Context, userUUID string) (*dto.UserBrief, error)
	// Logout 登出：持久化离线状态
	Logout(ctx context.Context, userUUID string) error
}

// IFriendService 好友服务接口
type IFriendService interface {
	// SendRequest 发送好友申请
	SendRequest(ctx context.Context, fromUUID, toUUID string) (*dto.FriendRequestItem, error)
	// AcceptRequest 同意好友申请（仅接收方），成功后双方互为好友
	AcceptRequest(ctx context.Context, userUUID string, requestID int64) error
	// RejectRequest 拒绝好友申请（仅接收方）
	RejectRequest(ctx context.Context, userUUID string, requestID int64) error
	// AreFriends 判断两个用户是否为好友
	AreFriends(ctx context.Context, a, b string) (bool, error)
	// GetFriendRequests 返回收到的待处理申请（含申请人投影）
	GetFriendRequests(ctx context.Context, userUUID string) ([]*dto.FriendRequestItem, error)
	// GetAllFriendRequests 返回收发的全部申请（含双方投影）
	GetAllFriendRequests(ctx context.Context, userUUID string) ([]*dto.FriendRequestItem, error)
	// GetFriends 返回好友资料列表
	GetFriends(ctx context.Context, userUUID string) ([]*dto.UserBrief, error)
	// ListFriendUUIDs 返回好友 uuid 列表（网关加入频道用）
	ListFriendUUIDs(ctx context.Context, userUUID string) ([]string, error)
}

// IChatService 私信服务接口
type IChatService interface {
	// SendMessage 发送私信：校验好友关系与文本长度，落库并返回带投影的消息
	SendMessage(ctx context.Context, senderUUID, receiverUUID, text string) (*dto.MessageItem, error)
	// GetMessages 返回与对端的全部消息（旧到新），副作用：对端发来的未读全部置为已读
	GetMessages(ctx context.Context, userUUID, peerUUID string) ([]*dto.MessageItem, error)
	// GetConversations 返回会话列表（按对端聚合，含最新消息与未读数）
	GetConversations(ctx context.Context, userUUID string) ([]*dto.ConversationItem, error)
}

// MediaUpload 动态媒体上传载体
type MediaUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// IPostService 动态服务接口
type IPostService interface {
	// CreatePost 发布动态，文本与媒体至少一项
	CreatePost(ctx context.Context, userUUID, text string, image, video *MediaUpload) (*dto.PostItem, error)
	// GetPosts 返回全部动态（新到旧，含作者投影）
	GetPosts(ctx context.Context) ([]*dto.PostItem, error)
	// GetPost 返回单条动态
	GetPost(ctx context.Context, id int64) (*dto.PostItem, error)
	// UpdatePost 编辑动态（仅作者），可同时替换图片/视频
	UpdatePost(ctx context.Context, userUUID string, id int64, text string, image, video *MediaUpload) (*dto.PostItem, error)
	// DeletePost 删除动态（仅作者），同时清理对象存储里的媒体
	DeletePost(ctx context.Context, userUUID string, id int64) error
}
