package gateway

import (
	"context"
	"errors"
	"net/http"

	"SocialServer/pkg/logger"
	"SocialServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// 前端与后端不同源（CORS 白名单在 HTTP 中间件层控制），
	// ws 握手阶段放开来源校验，身份由 token 保证。
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// WSHandler 负责处理 /ws 接入请求。
// 职责边界：
// - 处理 Gin/HTTP 层参数、升级与握手错误响应；
// - 鉴权与事件分发全部委托给 Gateway。
type WSHandler struct {
	gateway *Gateway
}

// NewWSHandler 创建 WebSocket 入口处理器。
func NewWSHandler(gateway *Gateway) *WSHandler {
	return &WSHandler{gateway: gateway}
}

// ServeWS 处理 WebSocket 握手与接入。
// 执行流程：
// 1. 从 query 中读取 token 并完成鉴权，失败在升级前用 HTTP 状态码拒绝；
// 2. 构建连接级 context（继承请求的 trace_id）；
// 3. 完成协议升级并进入连接处理主循环。
func (h *WSHandler) ServeWS(c *gin.Context) {
	token := c.Query("token")

	userUUID, err := h.gateway.Authenticate(token)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	connCtx := util.WithTraceID(context.Background(), c.GetString("trace_id"))

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(connCtx, "WebSocket 升级失败",
			logger.ErrorField("error", err),
		)
		return
	}

	h.handleConnection(connCtx, conn, userUUID)
}

// handleConnection 承载单个连接的完整生命周期。
func (h *WSHandler) handleConnection(ctx context.Context, conn *websocket.Conn, userUUID string) {
	client := NewClient(conn, util.NewUUID(), userUUID)

	if err := h.gateway.OnConnect(ctx, client); err != nil {
		logger.Warn(ctx, "连接接入被拒绝",
			logger.String("user_uuid", userUUID),
			logger.ErrorField("error", err),
		)
		client.Close()
		return
	}

	logger.Info(ctx, "WebSocket 连接已建立",
		logger.String("user_uuid", userUUID),
		logger.String("conn_id", client.ID()),
		logger.Int("online_count", h.gateway.Registry().ConnectionCount()),
	)

	client.Run(ctx, func(raw []byte) {
		h.gateway.OnMessage(ctx, client, raw)
	}, func() {
		h.gateway.OnDisconnect(ctx, client)
		logger.Info(ctx, "WebSocket 连接已断开",
			logger.String("user_uuid", userUUID),
			logger.String("conn_id", client.ID()),
			logger.Int("online_count", h.gateway.Registry().ConnectionCount()),
		)
	})
}

// writeAuthError 将鉴权错误映射为 HTTP 握手阶段错误响应。
// 说明：握手前还未升级为 WebSocket，因此用 HTTP JSON 返回更直观。
func (h *WSHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTokenRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": err.Error(),
		})
	case errors.Is(err, util.ErrTokenInvalid), errors.Is(err, util.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "token invalid or expired",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "internal error",
		})
	}
}
