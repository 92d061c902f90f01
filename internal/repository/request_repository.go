package repository

import (
	"context"

	"SocialServer/model"

	"gorm.io/gorm"
)

// requestRepositoryImpl 好友申请数据访问层实现
type requestRepositoryImpl struct {
	db *gorm.DB
}

// NewRequestRepository 创建好友申请仓储实例
func NewRequestRepository(db *gorm.DB) IRequestRepository {
	return &requestRepositoryImpl{db: db}
}

// Create 创建好友申请
func (r *requestRepositoryImpl) Create(ctx context.Context, req *model.FriendRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}

// GetByID 按 id 查询申请
func (r *requestRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// FindPendingBetween 查找两个用户之间任一方向的待处理申请。
// 发申请前的查重走这里：正向重复和反向交叉都要拦。
func (r *requestRepositoryImpl) FindPendingBetween(ctx context.Context, a, b string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", model.FriendRequestPending).
		Where("(from_uuid = ? AND to_uuid = ?) OR (from_uuid = ? AND to_uuid = ?)", a, b, b, a).
		First(&req).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// UpdateStatusFromPending 仅当当前状态为 pending 时流转到目标状态。
// WHERE 带旧状态做 CAS，两个请求并发处理同一条申请时只有一个能成功。
func (r *requestRepositoryImpl) UpdateStatusFromPending(ctx context.Context, id int64, to int8) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", id, model.FriendRequestPending).
		Update("status", to)
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListReceivedPending 返回收到的待处理申请，新到旧
func (r *requestRepositoryImpl) ListReceivedPending(ctx context.Context, userUUID string) ([]*model.FriendRequest, error) {
	var reqs []*model.FriendRequest
	err := r.db.WithContext(ctx).
		Where("to_uuid = ? AND status = ?", userUUID, model.FriendRequestPending).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return reqs, nil
}

// ListAllForUser 返回该用户发出和收到的全部申请，新到旧
func (r *requestRepositoryImpl) ListAllForUser(ctx context.Context, userUUID string) ([]*model.FriendRequest, error) {
	var reqs []*model.FriendRequest
	err := r.db.WithContext(ctx).
		Where("from_uuid = ? OR to_uuid = ?", userUUID, userUUID).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return reqs, nil
}
