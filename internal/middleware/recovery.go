package middleware

import (
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"SocialServer/pkg/logger"

	"github.com/gin-gonic/gin"
)

// GinRecovery 恢复中间件：捕获 panic，记录日志并返回 500。
// stack=true 时附带调用栈；断开的连接（broken pipe）只记日志不再写响应。
func GinRecovery(stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// 客户端断开导致的写失败不算服务端异常
				var brokenPipe bool
				if ne, ok := err.(*net.OpError); ok {
					var se *os.SyscallError
					if errors.As(ne.Err, &se) {
						msg := strings.ToLower(se.Error())
						if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
							brokenPipe = true
						}
					}
				}

				ctx := NewContextWithGin(c)
				httpRequest, _ := httputil.DumpRequest(c.Request, false)
				if brokenPipe {
					logger.Error(ctx, "连接已断开",
						logger.String("path", c.Request.URL.Path),
						logger.Any("error", err),
						logger.String("request", string(httpRequest)),
					)
					c.Abort()
					return
				}

				if stack {
					logger.Error(ctx, "请求处理 panic",
						logger.Any("error", err),
						logger.String("request", string(httpRequest)),
						logger.String("stack", string(debug.Stack())),
					)
				} else {
					logger.Error(ctx, "请求处理 panic",
						logger.Any("error", err),
						logger.String("request", string(httpRequest)),
					)
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
