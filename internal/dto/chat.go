package dto

import (
	"strconv"
	"time"

	"SocialServer/model"
)

// SendMessageReq 发送私信。
// text 不做 binding 校验，空文本/超长统一由服务层判定，
// 保证 REST 与 WebSocket 两条发送链路报同一套业务码。
type SendMessageReq struct {
	Receiver string `json:"receiver" binding:"required,uuid"`
	Text     string `json:"text"`
}

// MessageItem 私信条目
type MessageItem struct {
	Id           string     `json:"id"`
	SenderUuid   string     `json:"senderUuid"`
	ReceiverUuid string     `json:"receiverUuid"`
	Text         string     `json:"text"`
	IsRead       bool       `json:"isRead"`
	ReadAt       *time.Time `json:"readAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`

	// 收发双方的展示投影，仅发送链路（newMessage/messageSent）需要
	Sender   *UserBrief `json:"sender,omitempty"`
	Receiver *UserBrief `json:"receiver,omitempty"`
}

// NewMessageItem 从消息模型构建条目
func NewMessageItem(msg *model.Message) *MessageItem {
	return &MessageItem{
		Id:           strconv.FormatInt(msg.Id, 10),
		SenderUuid:   msg.SenderUuid,
		ReceiverUuid: msg.ReceiverUuid,
		Text:         msg.Text,
		IsRead:       msg.IsRead,
		ReadAt:       msg.ReadAt,
		CreatedAt:    msg.CreatedAt,
	}
}

// NewMessageItems 批量构建条目
func NewMessageItems(msgs []*model.Message) []*MessageItem {
	items := make([]*MessageItem, 0, len(msgs))
	for _, msg := range msgs {
		items = append(items, NewMessageItem(msg))
	}
	return items
}

// ConversationItem 会话列表条目：按对端聚合，含最新一条消息与未读数
type ConversationItem struct {
	Peer        *UserBrief   `json:"peer"`
	LastMessage *MessageItem `json:"lastMessage"`
	UnreadCount int64        `json:"unreadCount"`
}
