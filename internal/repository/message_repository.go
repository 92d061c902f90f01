package repository

import (
	"context"
	"time"

	"SocialServer/model"

	"gorm.io/gorm"
)

// messageRepositoryImpl 私信数据访问层实现
type messageRepositoryImpl struct {
	db *gorm.DB
}

// NewMessageRepository 创建私信仓储实例
func NewMessageRepository(db *gorm.DB) IMessageRepository {
	return &messageRepositoryImpl{db: db}
}

// Create 创建消息
func (r *messageRepositoryImpl) Create(ctx context.Context, msg *model.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}

// FindBetween 返回两个用户之间的全部消息，旧到新。
// 会话详情页按时间正序渲染。
func (r *messageRepositoryImpl) FindBetween(ctx context.Context, a, b string) ([]*model.Message, error) {
	var msgs []*model.Message
	err := r.db.WithContext(ctx).
		Where("(sender_uuid = ? AND receiver_uuid = ?) OR (sender_uuid = ? AND receiver_uuid = ?)", a, b, b, a).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return msgs, nil
}

// MarkRead 将 sender->receiver 的未读消息全部置为已读，返回影响行数。
// 影响行数为 0 不算错误（没有未读是常态）。
func (r *messageRepositoryImpl) MarkRead(ctx context.Context, senderUUID, receiverUUID string, readAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("sender_uuid = ? AND receiver_uuid = ? AND is_read = ?", senderUUID, receiverUUID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": readAt,
		})
	if result.Error != nil {
		return 0, WrapDBError(result.Error)
	}
	return result.RowsAffected, nil
}

// CountUnread 统计 sender->receiver 的未读消息数
func (r *messageRepositoryImpl) CountUnread(ctx context.Context, senderUUID, receiverUUID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("sender_uuid = ? AND receiver_uuid = ? AND is_read = ?", senderUUID, receiverUUID, false).
		Count(&count).Error
	if err != nil {
		return 0, WrapDBError(err)
	}
	return count, nil
}

// FindInvolving 返回该用户收发的全部消息，新到旧。
// 会话列表在 Service 层按对端分组，第一条即该会话的最新消息。
func (r *messageRepositoryImpl) FindInvolving(ctx context.Context, userUUID string) ([]*model.Message, error) {
	var msgs []*model.Message
	err := r.db.WithContext(ctx).
		Where("sender_uuid = ? OR receiver_uuid = ?", userUUID, userUUID).
		Order("created_at DESC, id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return msgs, nil
}
