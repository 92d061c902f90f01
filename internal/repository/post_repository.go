package repository

import (
	"context"

	"SocialServer/model"

	"gorm.io/gorm"
)

// postRepositoryImpl 动态数据访问层实现
type postRepositoryImpl struct {
	db *gorm.DB
}

// NewPostRepository 创建动态仓储实例
func NewPostRepository(db *gorm.DB) IPostRepository {
	return &postRepositoryImpl{db: db}
}

// Create 创建动态
func (r *postRepositoryImpl) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}

// GetByID 按 id 查询动态
func (r *postRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &post, nil
}

// ListAll 返回全部动态，新到旧
func (r *postRepositoryImpl) ListAll(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return posts, nil
}

// Update 保存动态的可编辑字段
func (r *postRepositoryImpl) Update(ctx context.Context, post *model.Post) error {
	result := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", post.Id).
		Updates(map[string]interface{}{
			"text":  post.Text,
			"image": post.Image,
			"video": post.Video,
		})
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete 软删除动态
func (r *postRepositoryImpl) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Post{})
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
