package middleware

import (
	"strconv"
	"time"

	"SocialServer/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// PrometheusMiddleware 上报 HTTP 请求计数与耗时。
// path 取路由模板（FullPath）而不是原始 URL，避免路径参数把标签打散。
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		metrics.HTTPRequestTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
