package repository

import (
	"context"
	"time"

	"SocialServer/model"
)

// IUserRepository 用户数据访问接口
type IUserRepository interface {
	// GetByUUID 按 uuid 查询用户，不存在返回 ErrRecordNotFound
	GetByUUID(ctx context.Context, uuid string) (*model.UserInfo, error)
	// GetByGoogleID 按 Google 账号 id 查询用户
	GetByGoogleID(ctx context.Context, googleID string) (*model.UserInfo, error)
	// GetByEmail 按邮箱查询用户
	GetByEmail(ctx context.Context, email string) (*model.UserInfo, error)
	// Create 创建用户，邮箱/GoogleID 冲突返回 ErrDuplicateKey
	Create(ctx context.Context, user *model.UserInfo) error
	// LinkGoogleAccount 给已有用户回填 Google 账号绑定；avatar 仅在用户尚无头像时补充
	LinkGoogleAccount(ctx context.Context, uuid, googleID, avatar string) error
	// UpdatePresence 翻转在线状态；下线时同步推进 last_seen
	UpdatePresence(ctx context.Context, uuid string, online bool) error
	// BatchGetByUUIDs 批量查询用户
	BatchGetByUUIDs(ctx context.Context, uuids []string) ([]*model.UserInfo, error)
}

// IFriendRepository 好友关系数据访问接口
type IFriendRepository interface {
	// AddFriendEdge 写入一条单向好友边，幂等（重复写不报错）
	AddFriendEdge(ctx context.Context, userUUID, friendUUID string) error
	// IsFriend 判断 userUUID 的好友集合中是否包含 friendUUID
	IsFriend(ctx context.Context, userUUID, friendUUID string) (bool, error)
	// ListFriendUUIDs 返回好友 uuid 列表（按成为好友的时间排序）
	ListFriendUUIDs(ctx context.Context, userUUID string) ([]string, error)
	// ListFriends 返回好友的用户资料投影
	ListFriends(ctx context.Context, userUUID string) ([]*model.UserInfo, error)
}

// IRequestRepository 好友申请数据访问接口
type IRequestRepository interface {
	// Create 创建好友申请
	Create(ctx context.Context, req *model.FriendRequest) error
	// GetByID 按 id 查询申请，不存在返回 ErrRecordNotFound
	GetByID(ctx context.Context, id int64) (*model.FriendRequest, error)
	// FindPendingBetween 查找两个用户之间（任一方向）的待处理申请，不存在返回 ErrRecordNotFound
	FindPendingBetween(ctx context.Context, a, b string) (*model.FriendRequest, error)
	// UpdateStatusFromPending 仅当当前状态为 pending 时流转到目标状态。
	// 返回 false 表示申请已被处理过（CAS 失败），调用方据此报冲突。
	UpdateStatusFromPending(ctx context.Context, id int64, to int8) (bool, error)
	// ListReceivedPending 返回收到的待处理申请（新到旧）
	ListReceivedPending(ctx context.Context, userUUID string) ([]*model.FriendRequest, error)
	// ListAllForUser 返回该用户发出和收到的全部申请（新到旧）
	ListAllForUser(ctx context.Context, userUUID string) ([]*model.FriendRequest, error)
}

// IMessageRepository 私信数据访问接口
type IMessageRepository interface {
	// Create 创建消息
	Create(ctx context.Context, msg *model.Message) error
	// FindBetween 返回两个用户之间的全部消息（旧到新）
	FindBetween(ctx context.Context, a, b string) ([]*model.Message, error)
	// MarkRead 将 sender->receiver 的未读消息全部置为已读，返回影响行数
	MarkRead(ctx context.Context, senderUUID, receiverUUID string, readAt time.Time) (int64, error)
	// CountUnread 统计 sender->receiver 的未读消息数
	CountUnread(ctx context.Context, senderUUID, receiverUUID string) (int64, error)
	// FindInvolving 返回该用户收发的全部消息（新到旧），用于聚合会话列表
	FindInvolving(ctx context.Context, userUUID string) ([]*model.Message, error)
}

// IPostRepository 动态数据访问接口
type IPostRepository interface {
	// Create 创建动态
	Create(ctx context.Context, post *model.Post) error
	// GetByID 按 id 查询动态，不存在返回 ErrRecordNotFound
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	// ListAll 返回全部动态（新到旧）
	ListAll(ctx context.Context) ([]*model.Post, error)
	// Update 保存动态的可编辑字段
	Update(ctx context.Context, post *model.Post) error
	// Delete 删除动态（软删除）
	Delete(ctx context.Context, id int64) error
}
