package repository

import (
	"context"
	"errors"
	"fmt"

	"SocialServer/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ==================== Repository 层统一错误定义 ====================

var (
	// ErrRecordNotFound 记录不存在
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey 唯一键冲突
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDatabase 数据库操作错误
	ErrDatabase = errors.New("database error")

	// ErrRedisNil Redis Key 不存在
	ErrRedisNil = errors.New("redis: key not found")

	// ErrRedis Redis 操作错误
	ErrRedis = errors.New("redis error")
)

// ==================== 核心包装函数 ====================

// wrapError 通用错误包装函数
// rules: 映射规则 map[源错误]目标错误；未命中规则时包装 defaultErr（保留原始信息用于日志）。
func wrapError(err error, rules map[error]error, defaultErr error) error {
	if err == nil {
		return nil
	}

	for source, target := range rules {
		if errors.Is(err, source) {
			return target
		}
	}

	return fmt.Errorf("%w: %v", defaultErr, err)
}

// ==================== 预定义规则 ====================

var (
	dbErrorRules = map[error]error{
		gorm.ErrRecordNotFound: ErrRecordNotFound,
		gorm.ErrDuplicatedKey:  ErrDuplicateKey,
	}

	redisErrorRules = map[error]error{
		redis.Nil: ErrRedisNil,
	}
)

// ==================== 便捷函数 ====================

// WrapDBError 包装数据库错误
func WrapDBError(err error) error {
	return wrapError(err, dbErrorRules, ErrDatabase)
}

// WrapRedisError 包装 Redis 错误
func WrapRedisError(err error) error {
	return wrapError(err, redisErrorRules, ErrRedis)
}

// LogRedisError 记录 Redis 错误日志。
// 缓存是旁路能力，Redis 故障只降级不上抛，这里统一收口日志。
func LogRedisError(ctx context.Context, err error) {
	logger.Error(ctx, "Redis 操作错误", logger.ErrorField("error", err))
}
