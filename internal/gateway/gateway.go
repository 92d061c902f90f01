package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"SocialServer/consts"
	"SocialServer/internal/repository"
	"SocialServer/internal/service"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/metrics"
	"SocialServer/pkg/util"
)

var (
	// ErrTokenRequired 握手缺少 token
	ErrTokenRequired = errors.New("token is required")
	// ErrShuttingDown 网关已进入关闭流程，拒绝新连接
	ErrShuttingDown = errors.New("gateway is shutting down")
)

// Gateway 实时网关：承载连接生命周期、事件分发与频道投递。
// 注册表由外部注入，网关只编排流程不持有全局状态。
type Gateway struct {
	registry  *ChannelRegistry
	friendSvc service.IFriendService
	chatSvc   service.IChatService
	userRepo  repository.IUserRepository
}

// NewGateway 创建网关
func NewGateway(
	registry *ChannelRegistry,
	friendSvc service.IFriendService,
	chatSvc service.IChatService,
	userRepo repository.IUserRepository,
) *Gateway {
	return &Gateway{
		registry:  registry,
		friendSvc: friendSvc,
		chatSvc:   chatSvc,
		userRepo:  userRepo,
	}
}

// Registry 返回注入的频道注册表（关闭流程和测试用）
func (g *Gateway) Registry() *ChannelRegistry {
	return g.registry
}

// Authenticate 校验握手 token，返回用户 uuid。
// 失败是终态：调用方在协议升级前直接拒绝。
func (g *Gateway) Authenticate(token string) (string, error) {
	if token == "" {
		return "", ErrTokenRequired
	}
	claims, err := util.ParseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserUUID, nil
}

// OnConnect 连接进入 Authenticated 后的接入动作：
// 1. 登记连接（首连时持久化上线状态）；
// 2. 订阅自己的频道和每个好友的频道；
// 3. 给该连接推一次在线好友快照（仅非空时）；
// 4. 向每个好友的频道广播 userOnline。
func (g *Gateway) OnConnect(ctx context.Context, client *Client) error {
	first, ok := g.registry.Register(client)
	if !ok {
		return ErrShuttingDown
	}
	metrics.WSOnlineConnections.Inc()

	userUUID := client.UserUUID()
	g.registry.Join(userUUID, client)

	friends, err := g.friendSvc.ListFriendUUIDs(ctx, userUUID)
	if err != nil {
		// 好友列表拿不到只影响频道订阅，连接本身保留
		logger.Error(ctx, "接入时获取好友列表失败",
			logger.String("user_uuid", userUUID),
			logger.ErrorField("error", err),
		)
		friends = nil
	}

	onlineFriends := make([]string, 0, len(friends))
	for _, friendUUID := range friends {
		g.registry.Join(friendUUID, client)
		if g.registry.IsUserOnline(friendUUID) {
			onlineFriends = append(onlineFriends, friendUUID)
		}
	}

	if first {
		if err := g.userRepo.UpdatePresence(ctx, userUUID, true); err != nil {
			logger.Error(ctx, "上线状态持久化失败",
				logger.String("user_uuid", userUUID),
				logger.ErrorField("error", err),
			)
		}
	}

	if len(onlineFriends) > 0 {
		g.sendEvent(ctx, client, EventOnlineFriendsList, &OnlineFriendsData{
			OnlineUserIds: onlineFriends,
		})
	}

	frame, err := MarshalEnvelope(EventUserOnline, &PresenceData{
		UserId:   userUUID,
		IsOnline: true,
	})
	if err == nil {
		for _, friendUUID := range friends {
			if g.registry.BroadcastExcept(friendUUID, client, frame) > 0 {
				metrics.WSEventTotal.WithLabelValues(EventUserOnline, "out").Inc()
			}
		}
	}
	return nil
}

// OnDisconnect 连接关闭后的清理动作。
// 好友列表重新拉取（不是连接时的快照），期间好友关系可能已经变化。
// 下线状态与 userOffline 广播只在该用户最后一条连接退出时触发。
func (g *Gateway) OnDisconnect(ctx context.Context, client *Client) {
	last := g.registry.Unregister(client)
	metrics.WSOnlineConnections.Dec()

	if !last {
		return
	}

	userUUID := client.UserUUID()
	lastSeen := time.Now()
	if err := g.userRepo.UpdatePresence(ctx, userUUID, false); err != nil {
		logger.Error(ctx, "下线状态持久化失败",
			logger.String("user_uuid", userUUID),
			logger.ErrorField("error", err),
		)
	}

	friends, err := g.friendSvc.ListFriendUUIDs(ctx, userUUID)
	if err != nil {
		logger.Error(ctx, "断连时获取好友列表失败",
			logger.String("user_uuid", userUUID),
			logger.ErrorField("error", err),
		)
		return
	}

	frame, err := MarshalEnvelope(EventUserOffline, &PresenceData{
		UserId:   userUUID,
		IsOnline: false,
		LastSeen: &lastSeen,
	})
	if err != nil {
		return
	}
	for _, friendUUID := range friends {
		if g.registry.Broadcast(friendUUID, frame) > 0 {
			metrics.WSEventTotal.WithLabelValues(EventUserOffline, "out").Inc()
		}
	}
}

// OnMessage 分发上行帧。
// 业务失败一律转成发回当前连接的 error 帧，连接保持打开；
// 只有协议层不可恢复的错误（写队列不可用）才会关连接。
func (g *Gateway) OnMessage(ctx context.Context, client *Client, raw []byte) {
	envelope, err := ParseEnvelope(raw)
	if err != nil {
		g.sendError(ctx, client, consts.CodeBodyError, consts.GetMessage(consts.CodeBodyError))
		return
	}
	metrics.WSEventTotal.WithLabelValues(envelope.Type, "in").Inc()

	switch envelope.Type {
	case EventSendMessage:
		g.handleSendMessage(ctx, client, envelope.Data)
	case EventTyping:
		g.handleTyping(ctx, client, envelope.Data)
	default:
		g.sendError(ctx, client, consts.CodeParamError, "不支持的事件类型")
	}
}

// handleSendMessage 发送私信链路：
// 校验与落库委托给 Chat Service；成功后 newMessage 投递接收方频道、
// messageSent 回执发送方连接；失败只通知当前连接。
func (g *Gateway) handleSendMessage(ctx context.Context, client *Client, data json.RawMessage) {
	var payload SendMessageData
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendError(ctx, client, consts.CodeBodyError, consts.GetMessage(consts.CodeBodyError))
		return
	}

	item, err := g.chatSvc.SendMessage(ctx, client.UserUUID(), payload.Receiver, payload.Text)
	if err != nil {
		code := service.CodeOf(err)
		if !consts.IsNonServerError(code) {
			logger.Error(ctx, "消息发送失败",
				logger.String("sender", client.UserUUID()),
				logger.String("receiver", payload.Receiver),
				logger.ErrorField("error", err),
			)
			code = consts.CodeMessageSendFail
		}
		g.sendError(ctx, client, code, consts.GetMessage(code))
		return
	}

	frame, err := MarshalEnvelope(EventNewMessage, item)
	if err == nil {
		// 发送方自己也订阅着接收方的频道，排除掉避免和回执重复
		if g.registry.BroadcastExcept(payload.Receiver, client, frame) > 0 {
			metrics.WSEventTotal.WithLabelValues(EventNewMessage, "out").Inc()
		}
	}
	g.sendEvent(ctx, client, EventMessageSent, item)
}

// handleTyping 输入状态透传：不落库、不回执，
// 定向投递到接收方频道并排除发送连接本身。
func (g *Gateway) handleTyping(ctx context.Context, client *Client, data json.RawMessage) {
	var payload TypingData
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendError(ctx, client, consts.CodeBodyError, consts.GetMessage(consts.CodeBodyError))
		return
	}
	if payload.Receiver == "" {
		return
	}

	frame, err := MarshalEnvelope(EventTyping, &TypingEventData{
		Sender:   client.UserUUID(),
		IsTyping: payload.IsTyping,
	})
	if err != nil {
		return
	}
	if g.registry.BroadcastExcept(payload.Receiver, client, frame) > 0 {
		metrics.WSEventTotal.WithLabelValues(EventTyping, "out").Inc()
	}
}

// Shutdown 关闭注册表并断开全部连接
func (g *Gateway) Shutdown() {
	g.registry.Shutdown()
}

// sendEvent 向单个连接发送事件帧
func (g *Gateway) sendEvent(ctx context.Context, client *Client, eventType string, data interface{}) {
	frame, err := MarshalEnvelope(eventType, data)
	if err != nil {
		logger.Warn(ctx, "事件帧序列化失败",
			logger.String("type", eventType),
			logger.ErrorField("error", err),
		)
		return
	}
	if !client.Enqueue(frame) {
		client.Close()
		return
	}
	metrics.WSEventTotal.WithLabelValues(eventType, "out").Inc()
}

// sendError 发送仅面向当前连接的 error 帧。
// 发送失败通常表示连接不可写，此时主动关闭连接避免资源泄漏。
func (g *Gateway) sendError(ctx context.Context, client *Client, code int32, message string) {
	g.sendEvent(ctx, client, EventError, &ErrorData{
		Code:    code,
		Message: message,
	})
}
