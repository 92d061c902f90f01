package repository

import (
	"context"
	"time"

	"SocialServer/model"

	"gorm.io/gorm"
)

// userRepositoryImpl 用户数据访问层实现
type userRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *gorm.DB) IUserRepository {
	return &userRepositoryImpl{db: db}
}

// GetByUUID 按 uuid 查询用户
func (r *userRepositoryImpl) GetByUUID(ctx context.Context, uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	err := r.db.WithContext(ctx).
		Where("uuid = ?", uuid).
		First(&user).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &user, nil
}

// GetByGoogleID 按 Google 账号 id 查询用户
func (r *userRepositoryImpl) GetByGoogleID(ctx context.Context, googleID string) (*model.UserInfo, error) {
	var user model.UserInfo
	err := r.db.WithContext(ctx).
		Where("google_id = ?", googleID).
		First(&user).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &user, nil
}

// GetByEmail 按邮箱查询用户
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (*model.UserInfo, error) {
	var user model.UserInfo
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &user, nil
}

// Create 创建用户
func (r *userRepositoryImpl) Create(ctx context.Context, user *model.UserInfo) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}

// LinkGoogleAccount 给按邮箱匹配到的已有用户回填 Google 绑定。
// 头像只在用户尚未设置时补充，不覆盖用户自己上传的头像。
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, uuid, googleID, avatar string) error {
	updates := map[string]interface{}{
		"google_id": googleID,
	}
	if avatar != "" {
		updates["avatar"] = gorm.Expr("IF(avatar = '', ?, avatar)", avatar)
	}

	result := r.db.WithContext(ctx).
		Model(&model.UserInfo{}).
		Where("uuid = ?", uuid).
		Updates(updates)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// UpdatePresence 翻转持久化在线状态。
// 上线只置 is_online；下线同时推进 last_seen，语义与网关断连流程对齐。
func (r *userRepositoryImpl) UpdatePresence(ctx context.Context, uuid string, online bool) error {
	updates := map[string]interface{}{
		"is_online": online,
	}
	if !online {
		updates["last_seen"] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&model.UserInfo{}).
		Where("uuid = ?", uuid).
		Updates(updates)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// BatchGetByUUIDs 批量查询用户
func (r *userRepositoryImpl) BatchGetByUUIDs(ctx context.Context, uuids []string) ([]*model.UserInfo, error) {
	if len(uuids) == 0 {
		return []*model.UserInfo{}, nil
	}

	var users []*model.UserInfo
	err := r.db.WithContext(ctx).
		Where("uuid IN ?", uuids).
		Find(&users).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return users, nil
}
