package service

import (
	"context"
	"time"
	"unicode/utf8"

	"SocialServer/consts"
	"SocialServer/internal/dto"
	"SocialServer/internal/repository"
	"SocialServer/model"
	"SocialServer/pkg/util"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// 发送链路投影缓存：name/avatar 变化低频，短 TTL 足够
	userBriefCacheSize = 2048
	userBriefCacheTTL  = time.Minute
)

// chatServiceImpl 私信服务实现
type chatServiceImpl struct {
	userRepo    repository.IUserRepository
	friendRepo  repository.IFriendRepository
	messageRepo repository.IMessageRepository

	// briefCache 进程内投影缓存，只服务发送链路的消息装配。
	// 在线状态相关的读接口（会话列表）不走这里，始终查库拿新鲜值。
	briefCache *expirable.LRU[string, *dto.UserBrief]
}

// NewChatService 创建私信服务
func NewChatService(
	userRepo repository.IUserRepository,
	friendRepo repository.IFriendRepository,
	messageRepo repository.IMessageRepository,
) IChatService {
	return &chatServiceImpl{
		userRepo:    userRepo,
		friendRepo:  friendRepo,
		messageRepo: messageRepo,
		briefCache:  expirable.NewLRU[string, *dto.UserBrief](userBriefCacheSize, nil, userBriefCacheTTL),
	}
}

// SendMessage 发送私信。
// 好友关系是硬门槛：非好友直接拒绝，不落库。
// 长度按字符数（rune）计，1000 字符恰好合法。
func (s *chatServiceImpl) SendMessage(ctx context.Context, senderUUID, receiverUUID, text string) (*dto.MessageItem, error) {
	if text == "" {
		return nil, NewBizError(consts.CodeMessageEmpty)
	}
	if utf8.RuneCountInString(text) > consts.MaxMessageTextLen {
		return nil, NewBizError(consts.CodeMessageTooLong)
	}

	isFriend, err := s.friendRepo.IsFriend(ctx, senderUUID, receiverUUID)
	if err != nil {
		return nil, err
	}
	if !isFriend {
		return nil, NewBizError(consts.CodeNotFriend)
	}

	msg := &model.Message{
		Id:           util.NextID(),
		SenderUuid:   senderUUID,
		ReceiverUuid: receiverUUID,
		Text:         text,
		IsRead:       false,
		CreatedAt:    time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	item := dto.NewMessageItem(msg)
	item.Sender, _ = s.getUserBrief(ctx, senderUUID)
	item.Receiver, _ = s.getUserBrief(ctx, receiverUUID)
	return item, nil
}

// GetMessages 返回与对端的全部消息。
// 先把对端发来的未读置为已读再查询，返回的列表里已读状态是新鲜的。
func (s *chatServiceImpl) GetMessages(ctx context.Context, userUUID, peerUUID string) ([]*dto.MessageItem, error) {
	isFriend, err := s.friendRepo.IsFriend(ctx, userUUID, peerUUID)
	if err != nil {
		return nil, err
	}
	if !isFriend {
		return nil, NewBizError(consts.CodeNotFriend)
	}

	if _, err := s.messageRepo.MarkRead(ctx, peerUUID, userUUID, time.Now()); err != nil {
		return nil, err
	}

	msgs, err := s.messageRepo.FindBetween(ctx, userUUID, peerUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewMessageItems(msgs), nil
}

// GetConversations 返回会话列表。
// 扫该用户收发的全部消息（新到旧），按对端分组取第一条作为 lastMessage；
// 未读数每次单独查库，不做缓存。
func (s *chatServiceImpl) GetConversations(ctx context.Context, userUUID string) ([]*dto.ConversationItem, error) {
	msgs, err := s.messageRepo.FindInvolving(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	// 分组保序：peerOrder 里的顺序就是各会话最新消息的时间序
	peerOrder := make([]string, 0)
	lastByPeer := make(map[string]*model.Message)
	for _, msg := range msgs {
		peer := msg.SenderUuid
		if peer == userUUID {
			peer = msg.ReceiverUuid
		}
		if _, seen := lastByPeer[peer]; !seen {
			lastByPeer[peer] = msg
			peerOrder = append(peerOrder, peer)
		}
	}

	if len(peerOrder) == 0 {
		return []*dto.ConversationItem{}, nil
	}

	// 对端投影查库拿新鲜值，在线状态要实时
	peers, err := s.userRepo.BatchGetByUUIDs(ctx, peerOrder)
	if err != nil {
		return nil, err
	}
	briefByUUID := make(map[string]*dto.UserBrief, len(peers))
	for _, p := range peers {
		briefByUUID[p.Uuid] = dto.NewUserBrief(p)
	}

	items := make([]*dto.ConversationItem, 0, len(peerOrder))
	for _, peer := range peerOrder {
		unread, err := s.messageRepo.CountUnread(ctx, peer, userUUID)
		if err != nil {
			return nil, err
		}
		items = append(items, &dto.ConversationItem{
			Peer:        briefByUUID[peer],
			LastMessage: dto.NewMessageItem(lastByPeer[peer]),
			UnreadCount: unread,
		})
	}
	return items, nil
}

// getUserBrief 带进程内缓存的投影查询
func (s *chatServiceImpl) getUserBrief(ctx context.Context, uuid string) (*dto.UserBrief, error) {
	if brief, ok := s.briefCache.Get(uuid); ok {
		return brief, nil
	}

	user, err := s.userRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, wrapRepoError(err, consts.CodeUserNotFound)
	}
	brief := dto.NewUserBrief(user)
	s.briefCache.Add(uuid, brief)
	return brief, nil
}
