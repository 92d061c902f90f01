package repository

import (
	"context"
	"time"

	rediskey "SocialServer/consts/redisKey"
	"SocialServer/model"
	"SocialServer/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// friendRepositoryImpl 好友关系数据访问层实现
// 好友集合采用 Cache-Aside：优先查 Redis Set，未命中回源 MySQL 并异步回填。
// redisClient 允许为 nil（降级为纯 MySQL 模式）。
type friendRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewFriendRepository 创建好友关系仓储实例
func NewFriendRepository(db *gorm.DB, redisClient *redis.Client) IFriendRepository {
	return &friendRepositoryImpl{db: db, redisClient: redisClient}
}

// AddFriendEdge 写入一条单向好友边。
// 使用 Upsert（INSERT ON DUPLICATE KEY UPDATE）保证幂等：
// 同意好友申请时两个方向各调用一次，任何一次重复执行都不会报错，
// 这使得 "状态翻转 + 两次加边" 的非事务序列在崩溃后可以安全重放。
func (r *friendRepositoryImpl) AddFriendEdge(ctx context.Context, userUUID, friendUUID string) error {
	now := time.Now()
	relation := &model.UserRelation{
		UserUuid:  userUUID,
		PeerUuid:  friendUUID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_uuid"}, {Name: "peer_uuid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"updated_at": now,
		}),
	}).Create(relation).Error
	if err != nil {
		return WrapDBError(err)
	}

	// 异步增量更新缓存：只有 Key 存在时才补成员，Key 不存在交给读路径全量加载。
	// 避免过期后的增量写造成缓存集合不完整。
	r.addFriendCacheAsync(ctx, userUUID, friendUUID)

	return nil
}

// IsFriend 判断 userUUID 的好友集合中是否包含 friendUUID。
// 好友关系按构造是对称的，单侧判断即可。
func (r *friendRepositoryImpl) IsFriend(ctx context.Context, userUUID, friendUUID string) (bool, error) {
	if r.redisClient != nil {
		hit, isMember, err := r.isFriendFromCache(ctx, userUUID, friendUUID)
		if err != nil {
			LogRedisError(ctx, err)
		} else if hit {
			return isMember, nil
		}
	}

	// 缓存未命中或 Redis 不可用，回源 MySQL
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserRelation{}).
		Where("user_uuid = ? AND peer_uuid = ?", userUUID, friendUUID).
		Count(&count).Error
	if err != nil {
		return false, WrapDBError(err)
	}

	// 异步全量回填该用户的好友集合
	r.reloadFriendCacheAsync(ctx, userUUID)

	return count > 0, nil
}

// isFriendFromCache 查询 Redis 好友集合。
// 返回值 hit=false 表示缓存未加载，调用方应回源。
func (r *friendRepositoryImpl) isFriendFromCache(ctx context.Context, userUUID, friendUUID string) (hit, isMember bool, err error) {
	cacheKey := rediskey.FriendSetKey(userUUID)

	// Pipeline 一次往返：Key 是否存在 + 成员判断
	pipe := r.redisClient.Pipeline()
	existsCmd := pipe.Exists(ctx, cacheKey)
	memberCmd := pipe.SIsMember(ctx, cacheKey, friendUUID)

	// 概率续期：1% 的概率在读取时顺便续期，避免热点 Key 过期
	if getRandomBool(0.01) {
		pipe.Expire(ctx, cacheKey, getRandomExpireTime(rediskey.FriendSetTTL))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		if isRedisWrongType(err) {
			_ = r.redisClient.Del(ctx, cacheKey).Err()
			return false, false, nil
		}
		return false, false, err
	}

	if existsCmd.Val() == 0 {
		return false, false, nil
	}
	return true, memberCmd.Val(), nil
}

// ListFriendUUIDs 返回好友 uuid 列表，按成为好友的时间排序。
func (r *friendRepositoryImpl) ListFriendUUIDs(ctx context.Context, userUUID string) ([]string, error) {
	var uuids []string
	err := r.db.WithContext(ctx).
		Model(&model.UserRelation{}).
		Where("user_uuid = ?", userUUID).
		Order("created_at ASC, id ASC").
		Pluck("peer_uuid", &uuids).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return uuids, nil
}

// ListFriends 返回好友的用户资料，保持 ListFriendUUIDs 的顺序。
func (r *friendRepositoryImpl) ListFriends(ctx context.Context, userUUID string) ([]*model.UserInfo, error) {
	uuids, err := r.ListFriendUUIDs(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if len(uuids) == 0 {
		return []*model.UserInfo{}, nil
	}

	var users []*model.UserInfo
	err = r.db.WithContext(ctx).
		Where("uuid IN ?", uuids).
		Find(&users).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	// IN 查询不保证顺序，这里按边的创建顺序重排
	byUUID := make(map[string]*model.UserInfo, len(users))
	for _, u := range users {
		byUUID[u.Uuid] = u
	}
	ordered := make([]*model.UserInfo, 0, len(users))
	for _, uuid := range uuids {
		if u, ok := byUUID[uuid]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

// addFriendCacheAsync 异步向已存在的缓存集合补充新好友。
func (r *friendRepositoryImpl) addFriendCacheAsync(ctx context.Context, userUUID, friendUUID string) {
	if r.redisClient == nil {
		return
	}

	async.RunSafe(ctx, func(taskCtx context.Context) {
		cacheKey := rediskey.FriendSetKey(userUUID)
		exists, err := r.redisClient.Exists(taskCtx, cacheKey).Result()
		if err != nil || exists == 0 {
			if err != nil {
				LogRedisError(taskCtx, err)
			}
			return
		}

		pipe := r.redisClient.Pipeline()
		pipe.SAdd(taskCtx, cacheKey, friendUUID)
		pipe.SRem(taskCtx, cacheKey, rediskey.EmptySetPlaceholder)
		pipe.Expire(taskCtx, cacheKey, getRandomExpireTime(rediskey.FriendSetTTL))
		if _, err := pipe.Exec(taskCtx); err != nil {
			LogRedisError(taskCtx, err)
		}
	}, 5*time.Second)
}

// reloadFriendCacheAsync 异步全量加载某用户的好友集合到 Redis。
// 空集合写入占位符并给短 TTL，防止缓存穿透。
func (r *friendRepositoryImpl) reloadFriendCacheAsync(ctx context.Context, userUUID string) {
	if r.redisClient == nil {
		return
	}

	async.RunSafe(ctx, func(taskCtx context.Context) {
		uuids, err := r.ListFriendUUIDs(taskCtx, userUUID)
		if err != nil {
			return
		}

		cacheKey := rediskey.FriendSetKey(userUUID)
		members := make([]interface{}, 0, len(uuids)+1)
		ttl := getRandomExpireTime(rediskey.FriendSetTTL)
		if len(uuids) == 0 {
			members = append(members, rediskey.EmptySetPlaceholder)
			ttl = getRandomExpireTime(rediskey.FriendSetEmptyTTL)
		} else {
			for _, uuid := range uuids {
				members = append(members, uuid)
			}
		}

		pipe := r.redisClient.Pipeline()
		pipe.Del(taskCtx, cacheKey)
		pipe.SAdd(taskCtx, cacheKey, members...)
		pipe.Expire(taskCtx, cacheKey, ttl)
		if _, err := pipe.Exec(taskCtx); err != nil {
			LogRedisError(taskCtx, err)
		}
	}, 10*time.Second)
}
