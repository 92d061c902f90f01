package v1

import (
	"SocialServer/consts"
	"SocialServer/internal/dto"
	"SocialServer/internal/middleware"
	"SocialServer/internal/service"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// ChatHandler 私信处理器。
// 主发送链路走 WebSocket 网关；这里提供历史消息、会话列表
// 和一个 REST 发送接口（没有长连接的客户端用）。
type ChatHandler struct {
	chatService service.IChatService
}

// NewChatHandler 创建私信处理器
func NewChatHandler(chatService service.IChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// SendMessage 发送私信接口。
// 只落库，不做在线推送：接收方下次拉取消息或会话列表时可见。
// @Router /api/v1/chat/message [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	item, err := h.chatService.SendMessage(ctx, userUUID, req.Receiver, req.Text)
	if err != nil {
		code := service.CodeOf(err)
		if consts.IsNonServerError(code) {
			// 非好友、空文本等业务拒绝,属于正常业务流程,不记录日志
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "发送私信服务内部错误",
			logger.String("receiver_uuid", req.Receiver),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, item)
}

// GetMessages 获取与指定好友的全部消息
// 副作用：对方发来的未读消息会被置为已读。
// @Router /api/v1/chat/messages/:peerUuid [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	peerUUID := c.Param("peerUuid")
	if peerUUID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	items, err := h.chatService.GetMessages(ctx, userUUID, peerUUID)
	if err != nil {
		code := service.CodeOf(err)
		if consts.IsNonServerError(code) {
			// 非好友等业务拒绝,属于正常业务流程,不记录日志
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "获取消息列表服务内部错误",
			logger.String("peer_uuid", peerUUID),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, items)
}

// GetConversations 获取会话列表
// @Router /api/v1/chat/conversations [get]
func (h *ChatHandler) GetConversations(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	items, err := h.chatService.GetConversations(ctx, userUUID)
	if err != nil {
		logger.Error(ctx, "获取会话列表服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, items)
}
