package util

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// TraceLogger 追踪中间件，生成或获取 trace_id 并存入 Gin 上下文
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 优先使用上游（如 Nginx）传入的请求 ID
		traceId := c.GetHeader(HeaderXRequestID)
		if traceId == "" {
			traceId = uuid.New().String()
		}

		// 放入 Gin 上下文供后续 Handler 使用，同时回写响应头方便客户端排障
		c.Set("trace_id", traceId)
		c.Header(HeaderXRequestID, traceId)

		c.Next()
	}
}

// NewUUID 生成新的 UUID
func NewUUID() string {
	return uuid.New().String()
}

// WithTraceID 将 trace_id 写入标准 context。
// 供脱离 Gin 的调用链使用（WebSocket 连接、异步任务）。
func WithTraceID(ctx context.Context, traceId string) context.Context {
	if traceId == "" {
		return ctx
	}
	//nolint:staticcheck // 与 logger 的取值键保持一致
	return context.WithValue(ctx, "trace_id", traceId)
}
