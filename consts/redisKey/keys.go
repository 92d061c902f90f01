package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// FriendSetTTL 好友集合缓存 TTL
	FriendSetTTL = 24 * time.Hour
	// FriendSetEmptyTTL 好友集合空值缓存 TTL
	FriendSetEmptyTTL = 5 * time.Minute
)

// EmptySetPlaceholder 空集合占位符成员。
// 用于区分 "缓存未加载" 和 "该用户确实没有好友" 两种状态。
const EmptySetPlaceholder = "__EMPTY__"

// ==================== Key 构造函数 ====================

// FriendSetKey 生成好友集合 Key: social:friend:set:{user_uuid}
// 类型为 Set，成员是好友 uuid。
func FriendSetKey(userUUID string) string {
	return fmt.Sprintf("social:friend:set:%s", userUUID)
}

// RateLimitIPKey 生成 IP 限流 Key: social:rate:ip:{ip}
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("social:rate:ip:%s", ip)
}
