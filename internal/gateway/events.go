package gateway

import (
	"encoding/json"
	"errors"
	"time"
)

// 双向事件表。上行事件由客户端发出，下行事件由网关按频道投递。
const (
	// EventSendMessage 上行：发送私信 {receiver, text}
	EventSendMessage = "sendMessage"
	// EventTyping 上行：输入状态 {receiver, isTyping}；下行：{sender, isTyping}
	EventTyping = "typing"

	// EventOnlineFriendsList 下行（仅连接建立时一次）：在线好友快照
	EventOnlineFriendsList = "onlineFriendsList"
	// EventUserOnline 下行：好友上线
	EventUserOnline = "userOnline"
	// EventUserOffline 下行：好友下线
	EventUserOffline = "userOffline"
	// EventNewMessage 下行：投递到接收方频道的新消息
	EventNewMessage = "newMessage"
	// EventMessageSent 下行：发送方连接上的成功回执
	EventMessageSent = "messageSent"
	// EventError 下行：仅发给当前连接的失败通知，连接不关闭
	EventError = "error"
)

// ErrInvalidEnvelope 上行帧不符合信封格式
var ErrInvalidEnvelope = errors.New("invalid event envelope")

// Envelope 统一帧格式 {type, data}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ParseEnvelope 解析上行帧。type 为空视为非法帧。
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, ErrInvalidEnvelope
	}
	if envelope.Type == "" {
		return nil, ErrInvalidEnvelope
	}
	return &envelope, nil
}

// MarshalEnvelope 构造下行帧
func MarshalEnvelope(eventType string, data interface{}) ([]byte, error) {
	var (
		payload json.RawMessage
		err     error
	)
	if data != nil {
		payload, err = json.Marshal(data)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(&Envelope{Type: eventType, Data: payload})
}

// SendMessageData sendMessage 上行载荷
type SendMessageData struct {
	Receiver string `json:"receiver"`
	Text     string `json:"text"`
}

// TypingData typing 上行载荷
type TypingData struct {
	Receiver string `json:"receiver"`
	IsTyping bool   `json:"isTyping"`
}

// TypingEventData typing 下行载荷
type TypingEventData struct {
	Sender   string `json:"sender"`
	IsTyping bool   `json:"isTyping"`
}

// OnlineFriendsData onlineFriendsList 下行载荷
type OnlineFriendsData struct {
	OnlineUserIds []string `json:"onlineUserIds"`
}

// PresenceData userOnline/userOffline 下行载荷。
// lastSeen 只在下线事件里携带。
type PresenceData struct {
	UserId   string     `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// ErrorData error 下行载荷
type ErrorData struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}
