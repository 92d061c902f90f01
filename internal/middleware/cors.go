package middleware

import (
	"github.com/gin-gonic/gin"
)

// CorsMiddleware 跨域中间件。
// allowedOrigins 为空时回显请求 Origin（本地调试形态），
// 配置了白名单后只放行名单内的来源。
func CorsMiddleware(allowedOrigins ...string) gin.HandlerFunc {
	whitelist := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin != "" {
			whitelist[origin] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := len(whitelist) == 0 || whitelist[origin]
		if origin != "" && allowed {
			c.Header("Access-Control-Allow-Origin", origin) // 返回请求的具体 Origin，不能是 *
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, x-requested-with")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin") // 重要：告诉浏览器 Origin 值会变化
		}

		// 处理 OPTIONS 预检请求
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
