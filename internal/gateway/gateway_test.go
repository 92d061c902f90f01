package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"SocialServer/consts"
	"SocialServer/internal/dto"
	"SocialServer/internal/repository"
	"SocialServer/internal/service"
	"SocialServer/model"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var gatewayTestLoggerOnce sync.Once

func initGatewayTestLogger() {
	gatewayTestLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// ==================== fakes ====================

type fakeFriendSvc struct {
	// friends: 用户 uuid -> 好友 uuid 列表
	friends map[string][]string
}

var _ service.IFriendService = (*fakeFriendSvc)(nil)

func (f *fakeFriendSvc) SendRequest(ctx context.Context, fromUUID, toUUID string) (*dto.FriendRequestItem, error) {
	return nil, nil
}

func (f *fakeFriendSvc) AcceptRequest(ctx context.Context, userUUID string, requestID int64) error {
	return nil
}

func (f *fakeFriendSvc) RejectRequest(ctx context.Context, userUUID string, requestID int64) error {
	return nil
}

func (f *fakeFriendSvc) AreFriends(ctx context.Context, a, b string) (bool, error) {
	for _, friend := range f.friends[a] {
		if friend == b {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendSvc) GetFriendRequests(ctx context.Context, userUUID string) ([]*dto.FriendRequestItem, error) {
	return nil, nil
}

func (f *fakeFriendSvc) GetAllFriendRequests(ctx context.Context, userUUID string) ([]*dto.FriendRequestItem, error) {
	return nil, nil
}

func (f *fakeFriendSvc) GetFriends(ctx context.Context, userUUID string) ([]*dto.UserBrief, error) {
	return nil, nil
}

func (f *fakeFriendSvc) ListFriendUUIDs(ctx context.Context, userUUID string) ([]string, error) {
	return f.friends[userUUID], nil
}

type fakeChatSvc struct {
	sendMessageFn func(ctx context.Context, senderUUID, receiverUUID, text string) (*dto.MessageItem, error)
}

var _ service.IChatService = (*fakeChatSvc)(nil)

func (f *fakeChatSvc) SendMessage(ctx context.Context, senderUUID, receiverUUID, text string) (*dto.MessageItem, error) {
	if f.sendMessageFn == nil {
		return &dto.MessageItem{
			Id:           "1",
			SenderUuid:   senderUUID,
			ReceiverUuid: receiverUUID,
			Text:         text,
		}, nil
	}
	return f.sendMessageFn(ctx, senderUUID, receiverUUID, text)
}

func (f *fakeChatSvc) GetMessages(ctx context.Context, userUUID, peerUUID string) ([]*dto.MessageItem, error) {
	return nil, nil
}

func (f *fakeChatSvc) GetConversations(ctx context.Context, userUUID string) ([]*dto.ConversationItem, error) {
	return nil, nil
}

// presenceRecorder 记录在线状态翻转，其余用户查询按不存在处理
type presenceRecorder struct {
	mu      sync.Mutex
	changes []presenceChange
}

type presenceChange struct {
	UserUUID string
	Online   bool
}

var _ repository.IUserRepository = (*presenceRecorder)(nil)

func (p *presenceRecorder) UpdatePresence(ctx context.Context, uuid string, online bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, presenceChange{UserUUID: uuid, Online: online})
	return nil
}

func (p *presenceRecorder) Changes() []presenceChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]presenceChange(nil), p.changes...)
}

func (p *presenceRecorder) GetByUUID(ctx context.Context, uuid string) (*model.UserInfo, error) {
	return nil, repository.ErrRecordNotFound
}

func (p *presenceRecorder) GetByGoogleID(ctx context.Context, googleID string) (*model.UserInfo, error) {
	return nil, repository.ErrRecordNotFound
}

func (p *presenceRecorder) GetByEmail(ctx context.Context, email string) (*model.UserInfo, error) {
	return nil, repository.ErrRecordNotFound
}

func (p *presenceRecorder) Create(ctx context.Context, user *model.UserInfo) error { return nil }

func (p *presenceRecorder) LinkGoogleAccount(ctx context.Context, uuid, googleID, avatar string) error {
	return nil
}

func (p *presenceRecorder) BatchGetByUUIDs(ctx context.Context, uuids []string) ([]*model.UserInfo, error) {
	return nil, nil
}

// ==================== 测试环境 ====================

type gatewayTestEnv struct {
	server   *httptest.Server
	registry *ChannelRegistry
	presence *presenceRecorder
}

func newGatewayTestEnv(t *testing.T, friends map[string][]string, chatSvc *fakeChatSvc) *gatewayTestEnv {
	t.Helper()
	initGatewayTestLogger()
	gin.SetMode(gin.TestMode)

	if chatSvc == nil {
		chatSvc = &fakeChatSvc{}
	}
	presence := &presenceRecorder{}
	registry := NewChannelRegistry()
	gw := NewGateway(registry, &fakeFriendSvc{friends: friends}, chatSvc, presence)

	engine := gin.New()
	engine.GET("/ws", NewWSHandler(gw).ServeWS)
	server := httptest.NewServer(engine)

	t.Cleanup(func() {
		registry.Shutdown()
		server.Close()
	})

	return &gatewayTestEnv{
		server:   server,
		registry: registry,
		presence: presence,
	}
}

func (e *gatewayTestEnv) wsURL(token string) string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?token=" + token
}

// dial 以指定用户身份建连，并等待注册表可见（接入动作完成）
func (e *gatewayTestEnv) dial(t *testing.T, userUUID string) *websocket.Conn {
	t.Helper()

	token, err := util.GenerateToken(userUUID)
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(e.wsURL(token), nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	require.Eventually(t, func() bool {
		return e.registry.IsUserOnline(userUUID)
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	envelope, err := ParseEnvelope(raw)
	require.NoError(t, err)
	return envelope
}

func sendEvent(t *testing.T, conn *websocket.Conn, eventType string, data interface{}) {
	t.Helper()
	frame, err := MarshalEnvelope(eventType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

// ==================== 握手 ====================

func TestServeWS_MissingToken(t *testing.T) {
	env := newGatewayTestEnv(t, nil, nil)

	resp, err := http.Get(env.server.URL + "/ws")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeWS_InvalidToken(t *testing.T) {
	env := newGatewayTestEnv(t, nil, nil)

	_, resp, err := websocket.DefaultDialer.Dial(env.wsURL("garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer func() {
		_ = resp.Body.Close()
	}()
	// 升级前用 HTTP 状态码拒绝
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ==================== 接入与在线状态 ====================

func TestGateway_PresenceLifecycle(t *testing.T) {
	friends := map[string][]string{
		"u-a": {"u-b"},
		"u-b": {"u-a"},
	}
	env := newGatewayTestEnv(t, friends, nil)

	connB := env.dial(t, "u-b")
	connA := env.dial(t, "u-a")

	// 先在线的 B 收到 A 的上线通知
	envelope := readEvent(t, connB)
	require.Equal(t, EventUserOnline, envelope.Type)
	var online PresenceData
	require.NoError(t, json.Unmarshal(envelope.Data, &online))
	assert.Equal(t, "u-a", online.UserId)
	assert.True(t, online.IsOnline)
	assert.Nil(t, online.LastSeen)

	// 后接入的 A 收到在线好友快照
	envelope = readEvent(t, connA)
	require.Equal(t, EventOnlineFriendsList, envelope.Type)
	var snapshot OnlineFriendsData
	require.NoError(t, json.Unmarshal(envelope.Data, &snapshot))
	assert.Equal(t, []string{"u-b"}, snapshot.OnlineUserIds)

	// A 断开：B 收到带 lastSeen 的下线通知
	require.NoError(t, connA.Close())

	envelope = readEvent(t, connB)
	require.Equal(t, EventUserOffline, envelope.Type)
	var offline PresenceData
	require.NoError(t, json.Unmarshal(envelope.Data, &offline))
	assert.Equal(t, "u-a", offline.UserId)
	assert.False(t, offline.IsOnline)
	require.NotNil(t, offline.LastSeen)

	// 在线状态按 首连上线/末连下线 持久化
	require.Eventually(t, func() bool {
		changes := env.presence.Changes()
		return len(changes) >= 3 &&
			changes[len(changes)-1] == presenceChange{UserUUID: "u-a", Online: false}
	}, 2*time.Second, 10*time.Millisecond)
}

// 同一用户多条连接：只有首连触发上线、末连触发下线
func TestGateway_MultiConnectionPresence(t *testing.T) {
	env := newGatewayTestEnv(t, map[string][]string{"u-a": nil}, nil)

	conn1 := env.dial(t, "u-a")
	conn2 := env.dial(t, "u-a")
	require.Eventually(t, func() bool {
		return env.registry.ConnectionCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn1.Close())

	// 第一条连接退出后用户仍在线，不触发下线
	time.Sleep(100 * time.Millisecond)
	assert.True(t, env.registry.IsUserOnline("u-a"))

	require.NoError(t, conn2.Close())
	require.Eventually(t, func() bool {
		return !env.registry.IsUserOnline("u-a")
	}, 2*time.Second, 10*time.Millisecond)

	changes := env.presence.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, presenceChange{UserUUID: "u-a", Online: true}, changes[0])
	assert.Equal(t, presenceChange{UserUUID: "u-a", Online: false}, changes[1])
}

// 优雅退出：Shutdown 关闭连接后，每个在线用户都要落一次下线持久化
func TestGateway_ShutdownPersistsOffline(t *testing.T) {
	env := newGatewayTestEnv(t, map[string][]string{"u-a": nil}, nil)

	_ = env.dial(t, "u-a")
	require.Eventually(t, func() bool {
		changes := env.presence.Changes()
		return len(changes) >= 1 &&
			changes[0] == presenceChange{UserUUID: "u-a", Online: true}
	}, 2*time.Second, 10*time.Millisecond)

	env.registry.Shutdown()

	require.Eventually(t, func() bool {
		changes := env.presence.Changes()
		return changes[len(changes)-1] == presenceChange{UserUUID: "u-a", Online: false}
	}, 2*time.Second, 10*time.Millisecond)
}

// ==================== 消息收发 ====================

func TestGateway_SendMessage(t *testing.T) {
	friends := map[string][]string{
		"u-a": {"u-b"},
		"u-b": {"u-a"},
	}
	env := newGatewayTestEnv(t, friends, nil)

	connB := env.dial(t, "u-b")
	connA := env.dial(t, "u-a")

	// 消费接入阶段的 presence 事件
	require.Equal(t, EventUserOnline, readEvent(t, connB).Type)
	require.Equal(t, EventOnlineFriendsList, readEvent(t, connA).Type)

	sendEvent(t, connA, EventSendMessage, &SendMessageData{Receiver: "u-b", Text: "hello"})

	// 接收方收到 newMessage
	envelope := readEvent(t, connB)
	require.Equal(t, EventNewMessage, envelope.Type)
	var delivered dto.MessageItem
	require.NoError(t, json.Unmarshal(envelope.Data, &delivered))
	assert.Equal(t, "u-a", delivered.SenderUuid)
	assert.Equal(t, "hello", delivered.Text)

	// 发送方收到 messageSent 回执（而不是 newMessage 回声）
	envelope = readEvent(t, connA)
	require.Equal(t, EventMessageSent, envelope.Type)
	var receipt dto.MessageItem
	require.NoError(t, json.Unmarshal(envelope.Data, &receipt))
	assert.Equal(t, "hello", receipt.Text)
}

// 业务失败转 error 帧，连接保持可用
func TestGateway_SendMessageRejected(t *testing.T) {
	chatSvc := &fakeChatSvc{
		sendMessageFn: func(ctx context.Context, senderUUID, receiverUUID, text string) (*dto.MessageItem, error) {
			if receiverUUID == "u-stranger" {
				return nil, service.NewBizError(consts.CodeNotFriend)
			}
			return &dto.MessageItem{Id: "1", SenderUuid: senderUUID, ReceiverUuid: receiverUUID, Text: text}, nil
		},
	}
	env := newGatewayTestEnv(t, map[string][]string{"u-a": nil}, chatSvc)

	connA := env.dial(t, "u-a")

	sendEvent(t, connA, EventSendMessage, &SendMessageData{Receiver: "u-stranger", Text: "hi"})

	envelope := readEvent(t, connA)
	require.Equal(t, EventError, envelope.Type)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(envelope.Data, &errData))
	assert.Equal(t, consts.CodeNotFriend, errData.Code)

	// error 帧后连接仍然可用
	sendEvent(t, connA, EventSendMessage, &SendMessageData{Receiver: "u-b", Text: "still alive"})
	assert.Equal(t, EventMessageSent, readEvent(t, connA).Type)
}

func TestGateway_MalformedFrame(t *testing.T) {
	env := newGatewayTestEnv(t, map[string][]string{"u-a": nil}, nil)

	connA := env.dial(t, "u-a")
	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte("not-json")))

	envelope := readEvent(t, connA)
	require.Equal(t, EventError, envelope.Type)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(envelope.Data, &errData))
	assert.Equal(t, consts.CodeBodyError, errData.Code)
}

// ==================== typing ====================

func TestGateway_Typing(t *testing.T) {
	friends := map[string][]string{
		"u-a": {"u-b"},
		"u-b": {"u-a"},
	}
	env := newGatewayTestEnv(t, friends, nil)

	connB := env.dial(t, "u-b")
	connA := env.dial(t, "u-a")

	require.Equal(t, EventUserOnline, readEvent(t, connB).Type)
	require.Equal(t, EventOnlineFriendsList, readEvent(t, connA).Type)

	sendEvent(t, connA, EventTyping, &TypingData{Receiver: "u-b", IsTyping: true})

	// 接收方看到的是下行载荷（sender 视角）
	envelope := readEvent(t, connB)
	require.Equal(t, EventTyping, envelope.Type)
	var typing TypingEventData
	require.NoError(t, json.Unmarshal(envelope.Data, &typing))
	assert.Equal(t, "u-a", typing.Sender)
	assert.True(t, typing.IsTyping)

	// typing 不产生回执：紧跟的消息回执应是 A 收到的下一帧
	sendEvent(t, connA, EventSendMessage, &SendMessageData{Receiver: "u-b", Text: "ping"})
	assert.Equal(t, EventMessageSent, readEvent(t, connA).Type)
}
