package service

import (
	"context"
	"errors"

	"SocialServer/consts"
	"SocialServer/internal/dto"
	"SocialServer/internal/repository"
	"SocialServer/model"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/util"
)

// friendServiceImpl 好友服务实现
type friendServiceImpl struct {
	userRepo    repository.IUserRepository
	friendRepo  repository.IFriendRepository
	requestRepo repository.IRequestRepository
}

// NewFriendService 创建好友服务
func NewFriendService(
	userRepo repository.IUserRepository,
	friendRepo repository.IFriendRepository,
	requestRepo repository.IRequestRepository,
) IFriendService {
	return &friendServiceImpl{
		userRepo:    userRepo,
		friendRepo:  friendRepo,
		requestRepo: requestRepo,
	}
}

// SendRequest 发送好友申请。
// 查重覆盖两个方向：对方先发了申请时也按冲突处理，避免交叉 pending。
func (s *friendServiceImpl) SendRequest(ctx context.Context, fromUUID, toUUID string) (*dto.FriendRequestItem, error) {
	if fromUUID == toUUID {
		return nil, NewBizError(consts.CodeSelfRequest)
	}

	target, err := s.userRepo.GetByUUID(ctx, toUUID)
	if err != nil {
		return nil, wrapRepoError(err, consts.CodeUserNotFound)
	}

	isFriend, err := s.friendRepo.IsFriend(ctx, fromUUID, toUUID)
	if err != nil {
		return nil, err
	}
	if isFriend {
		return nil, NewBizError(consts.CodeAlreadyFriend)
	}

	_, err = s.requestRepo.FindPendingBetween(ctx, fromUUID, toUUID)
	if err == nil {
		return nil, NewBizError(consts.CodeFriendRequestSent)
	}
	if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}

	req := &model.FriendRequest{
		Id:       util.NextID(),
		FromUuid: fromUUID,
		ToUuid:   toUUID,
		Status:   model.FriendRequestPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	logger.Info(ctx, "好友申请已发送",
		logger.String("from", fromUUID),
		logger.String("to", toUUID),
		logger.Int64("request_id", req.Id),
	)

	return dto.NewFriendRequestItem(req, nil, dto.NewUserBrief(target)), nil
}

// AcceptRequest 同意好友申请。
// 状态流转用 CAS 兜并发：同一条申请被处理两次时，第二次报 CodeRequestHandled。
// 状态翻转和两条边的写入不在一个事务里，边是幂等 Upsert，
// 中途崩溃留下的半完成状态可以通过重放写边修复。
func (s *friendServiceImpl) AcceptRequest(ctx context.Context, userUUID string, requestID int64) error {
	req, err := s.getRequestForHandling(ctx, userUUID, requestID)
	if err != nil {
		return err
	}

	ok, err := s.requestRepo.UpdateStatusFromPending(ctx, requestID, model.FriendRequestAccepted)
	if err != nil {
		return err
	}
	if !ok {
		return NewBizError(consts.CodeRequestHandled)
	}

	if err := s.friendRepo.AddFriendEdge(ctx, req.FromUuid, req.ToUuid); err != nil {
		return err
	}
	if err := s.friendRepo.AddFriendEdge(ctx, req.ToUuid, req.FromUuid); err != nil {
		return err
	}

	logger.Info(ctx, "好友申请已同意",
		logger.Int64("request_id", requestID),
		logger.String("from", req.FromUuid),
		logger.String("to", req.ToUuid),
	)
	return nil
}

// RejectRequest 拒绝好友申请，只翻转状态不动好友图。
func (s *friendServiceImpl) RejectRequest(ctx context.Context, userUUID string, requestID int64) error {
	if _, err := s.getRequestForHandling(ctx, userUUID, requestID); err != nil {
		return err
	}

	ok, err := s.requestRepo.UpdateStatusFromPending(ctx, requestID, model.FriendRequestRejected)
	if err != nil {
		return err
	}
	if !ok {
		return NewBizError(consts.CodeRequestHandled)
	}

	logger.Info(ctx, "好友申请已拒绝",
		logger.Int64("request_id", requestID),
	)
	return nil
}

// getRequestForHandling 处理申请前的公共校验：存在性、接收方身份、未被处理。
func (s *friendServiceImpl) getRequestForHandling(ctx context.Context, userUUID string, requestID int64) (*model.FriendRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, wrapRepoError(err, consts.CodeRequestNotFound)
	}
	if req.ToUuid != userUUID {
		return nil, NewBizError(consts.CodeNotRequestTarget)
	}
	if req.Status != model.FriendRequestPending {
		return nil, NewBizError(consts.CodeRequestHandled)
	}
	return req, nil
}

func (s *friendServiceImpl) AreFriends(ctx context.Context, a, b string) (bool, error) {
	return s.friendRepo.IsFriend(ctx, a, b)
}

// GetFriendRequests 返回收到的待处理申请，附带申请人投影。
func (s *friendServiceImpl) GetFriendRequests(ctx context.Context, userUUID string) ([]*dto.FriendRequestItem, error) {
	reqs, err := s.requestRepo.ListReceivedPending(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return s.assembleRequestItems(ctx, reqs, true, false)
}

// GetAllFriendRequests 返回收发的全部申请，附带双方投影。
func (s *friendServiceImpl) GetAllFriendRequests(ctx context.Context, userUUID string) ([]*dto.FriendRequestItem, error) {
	reqs, err := s.requestRepo.ListAllForUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return s.assembleRequestItems(ctx, reqs, true, true)
}

// assembleRequestItems 批量补齐申请条目的用户投影，一次批查避免 N+1。
func (s *friendServiceImpl) assembleRequestItems(ctx context.Context, reqs []*model.FriendRequest, withFrom, withTo bool) ([]*dto.FriendRequestItem, error) {
	uuidSet := make(map[string]struct{}, len(reqs)*2)
	for _, req := range reqs {
		if withFrom {
			uuidSet[req.FromUuid] = struct{}{}
		}
		if withTo {
			uuidSet[req.ToUuid] = struct{}{}
		}
	}
	uuids := make([]string, 0, len(uuidSet))
	for uuid := range uuidSet {
		uuids = append(uuids, uuid)
	}

	users, err := s.userRepo.BatchGetByUUIDs(ctx, uuids)
	if err != nil {
		return nil, err
	}
	briefByUUID := make(map[string]*dto.UserBrief, len(users))
	for _, u := range users {
		briefByUUID[u.Uuid] = dto.NewUserBrief(u)
	}

	items := make([]*dto.FriendRequestItem, 0, len(reqs))
	for _, req := range reqs {
		var from, to *dto.UserBrief
		if withFrom {
			from = briefByUUID[req.FromUuid]
		}
		if withTo {
			to = briefByUUID[req.ToUuid]
		}
		items = append(items, dto.NewFriendRequestItem(req, from, to))
	}
	return items, nil
}

func (s *friendServiceImpl) GetFriends(ctx context.Context, userUUID string) ([]*dto.UserBrief, error) {
	friends, err := s.friendRepo.ListFriends(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserBriefs(friends), nil
}

func (s *friendServiceImpl) ListFriendUUIDs(ctx context.Context, userUUID string) ([]string, error) {
	return s.friendRepo.ListFriendUUIDs(ctx, userUUID)
}
