package repository

import (
	"math/rand"
	"strings"
	"time"
)

// getRandomExpireTime 在基础 TTL 上增加 0%~10% 的随机抖动。
// 防止同一批缓存同时过期造成雪崩。
func getRandomExpireTime(base time.Duration) time.Duration {
	if base <= 0 {
		return base
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 10))
	return base + jitter
}

// getRandomBool 以给定概率返回 true（0~1）。
// 用于概率性续期等低频维护动作。
func getRandomBool(probability float64) bool {
	return rand.Float64() < probability
}

// isRedisWrongType 判断是否为 WRONGTYPE 错误。
// 出现说明 Key 被别的结构占用（通常是部署事故），直接删 Key 重建最安全。
func isRedisWrongType(err error) bool {
	return err != nil && strings.Contains(err.Error(), "WRONGTYPE")
}
