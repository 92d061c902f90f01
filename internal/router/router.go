package router

import (
	"SocialServer/internal/gateway"
	"SocialServer/internal/middleware"
	v1 "SocialServer/internal/router/v1"
	"SocialServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的全部处理器（依赖注入）
type Handlers struct {
	Auth   *v1.AuthHandler
	Friend *v1.FriendHandler
	Chat   *v1.ChatHandler
	Post   *v1.PostHandler
	WS     *gateway.WSHandler
}

// InitRouter 初始化路由
func InitRouter(h Handlers, limiter *middleware.RateLimiter, allowedOrigins ...string) *gin.Engine {
	r := gin.New()

	// 恢复中间件
	r.Use(middleware.GinRecovery(true))

	// 追踪中间件 (生成 trace_id)
	r.Use(util.TraceLogger())

	// 日志中间件
	r.Use(middleware.GinLogger())

	// Prometheus 监控中间件
	r.Use(middleware.PrometheusMiddleware())

	// 跨域中间件
	r.Use(middleware.CorsMiddleware(allowedOrigins...))

	// IP 限流中间件
	if limiter != nil {
		r.Use(middleware.IPRateLimitMiddleware(limiter))
	}

	// 健康检查（无需认证）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Prometheus 指标暴露接口
	// Prometheus 会定时访问这个接口来拉取监控数据
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket 接入点（token 在握手 query 里校验，不走 JWT 中间件）
	r.GET("/ws", h.WS.ServeWS)

	// OAuth 浏览器跳转入口（无需认证）
	r.GET("/auth/google", h.Auth.GoogleLogin)
	r.GET("/auth/google/callback", h.Auth.GoogleCallback)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	{
		// 认证相关接口
		auth := api.Group("/auth")
		{
			auth.GET("/me", h.Auth.Me)
			auth.POST("/logout", h.Auth.Logout)
		}

		// 好友相关接口
		friend := api.Group("/friend")
		{
			friend.POST("/request", h.Friend.SendRequest)
			friend.POST("/request/:id/accept", h.Friend.AcceptRequest)
			friend.POST("/request/:id/reject", h.Friend.RejectRequest)
			friend.GET("/requests", h.Friend.GetFriendRequests)
			friend.GET("/requests/all", h.Friend.GetAllFriendRequests)
		}
		api.GET("/friends", h.Friend.GetFriends)
		api.GET("/friends/check/:peerUuid", h.Friend.CheckFriendship)

		// 私信接口（实时推送走 /ws，REST 发送只落库）
		chat := api.Group("/chat")
		{
			chat.POST("/message", h.Chat.SendMessage)
			chat.GET("/messages/:peerUuid", h.Chat.GetMessages)
			chat.GET("/conversations", h.Chat.GetConversations)
		}

		// 动态相关接口
		api.GET("/posts", h.Post.GetPosts)
		post := api.Group("/post")
		{
			post.POST("", h.Post.CreatePost)
			post.GET("/:id", h.Post.GetPost)
			post.PUT("/:id", h.Post.UpdatePost)
			post.DELETE("/:id", h.Post.DeletePost)
		}
	}

	return r
}
