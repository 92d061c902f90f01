package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"SocialServer/consts"
	rediskey "SocialServer/consts/redisKey"
	"SocialServer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// luaTokenBucket Redis 令牌桶 Lua 脚本
// 功能：原子性地更新令牌桶并判断是否允许通过
// 参数：
//
//	KEYS[1]: 限流 key (如: social:rate:ip:{ip})
//	ARGV[1]: 当前时间戳 (毫秒)
//	ARGV[2]: 令牌桶容量
//	ARGV[3]: 每秒产生的令牌数
//	ARGV[4]: 每次请求消耗的令牌数
//
// 返回值：1 允许通过；0 不允许通过 (令牌不足)
// 注意：时间戳使用毫秒级精度以提高计算准确性
const luaTokenBucket = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3]) -- 每秒产生的令牌数
local requested = tonumber(ARGV[4])

-- 获取当前状态
local info = redis.call('HMGET', key, 'tokens', 'last_time')
local current_tokens = tonumber(info[1])
local last_time = tonumber(info[2])

-- 初始化
if current_tokens == nil then
    current_tokens = capacity
end
if last_time == nil then
    last_time = now
end

-- 计算时间差 (毫秒)
local time_diff = math.max(0, now - last_time)

-- 计算补充令牌: (时间差ms * 速率) / 1000
local new_tokens = math.floor((time_diff * rate) / 1000)

-- 更新令牌数
if new_tokens > 0 then
    current_tokens = math.min(capacity, current_tokens + new_tokens)
    last_time = now -- 只有产生了新令牌才更新时间，防止精度丢失
end

-- 判断是否允许通过
local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

-- 更新 Redis
redis.call('HMSET', key, 'tokens', current_tokens, 'last_time', last_time)

-- 设置过期时间：桶填满所需时间 * 2，至少 60 秒
local fill_time = math.ceil(capacity / rate)
local ttl = math.max(60, fill_time * 2)
redis.call('EXPIRE', key, ttl)

return allowed
`

// RateLimiter 基于 Redis 的 IP 级别限流器。
// Redis 不可用时不是直接放行，而是退化到进程内的单机令牌桶兜底，
// 兜底桶是全局共享的（不分 IP），只保证总量不被打爆。
type RateLimiter struct {
	redisClient *redis.Client
	rate        float64 // 每秒产生的令牌数
	burst       int     // 令牌桶容量
	local       *rate.Limiter
}

// NewRateLimiter 创建限流器。
// redisClient 允许为 nil（此时始终走本地兜底桶）。
func NewRateLimiter(redisClient *redis.Client, ratePerSec float64, burst int) *RateLimiter {
	// 本地兜底桶放大 10 倍容量：它是全进程共享的，太小会误伤正常流量
	localLimit := rate.Limit(ratePerSec * 10)
	localBurst := burst * 10
	return &RateLimiter{
		redisClient: redisClient,
		rate:        ratePerSec,
		burst:       burst,
		local:       rate.NewLimiter(localLimit, localBurst),
	}
}

// Allow 检查是否允许请求通过
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	if r.redisClient == nil {
		return r.local.Allow()
	}

	// 给 Redis 操作加一个独立的短超时（50ms），防止 Redis 响应慢拖死入口
	redisCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	now := time.Now().UnixMilli()
	result, err := r.redisClient.Eval(redisCtx, luaTokenBucket, []string{key}, now, r.burst, r.rate, 1).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "Redis 限流检查超时，切换本地兜底",
				logger.String("key", key),
				logger.ErrorField("error", err),
			)
		} else {
			logger.Error(ctx, "Redis 限流检查失败，切换本地兜底",
				logger.String("key", key),
				logger.ErrorField("error", err),
			)
		}
		return r.local.Allow()
	}

	allowed, ok := result.(int64)
	if !ok {
		logger.Warn(ctx, "Redis 限流返回值类型错误，切换本地兜底",
			logger.String("key", key),
			logger.Any("result", result),
		)
		return r.local.Allow()
	}
	return allowed == 1
}

// IPRateLimitMiddleware 基于 IP 的限流中间件
func IPRateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			// 无法获取 IP，放行请求（记录警告）
			logger.Warn(NewContextWithGin(c), "无法获取客户端 IP，跳过限流检查",
				logger.String("path", c.Request.URL.Path),
			)
			c.Next()
			return
		}

		if !limiter.Allow(NewContextWithGin(c), rediskey.RateLimitIPKey(ip)) {
			logger.Warn(NewContextWithGin(c), "IP 请求被限流",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    consts.CodeTooManyRequests,
				"message": consts.GetMessage(consts.CodeTooManyRequests),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
